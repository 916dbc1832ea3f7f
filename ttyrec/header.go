// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"fmt"
	"io"
	"time"

	"github.com/danjacques/gottyrec/endian"
	"github.com/danjacques/gottyrec/support/dataio"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size, in bytes, of an encoded Header.
	HeaderSize = 12

	// MaxSeconds is the largest whole-second value that can be encoded. The
	// low 32 bits are stored in the first word, and the next 12 bits borrow
	// the top of the microsecond word.
	MaxSeconds = (uint64(1) << 44) - 1

	// MaxMicroseconds is the largest legal sub-second value.
	MaxMicroseconds = 999999

	// usecMask selects the microsecond bits of the packed word.
	usecMask = 0x000FFFFF
	// secHighMask selects the borrowed high-second bits of the packed word.
	secHighMask = 0xFFF00000
	// secHighShift moves seconds bits 32..43 to packed bits 20..31.
	secHighShift = 12
)

var (
	// ErrSecondsOutOfRange is returned when encoding a Header whose seconds
	// exceed MaxSeconds.
	ErrSecondsOutOfRange = errors.New("seconds out of encodable range")

	// ErrMicrosecondsOutOfRange is returned when encoding a Header whose
	// microseconds don't fit in the packed word's 20 bits.
	ErrMicrosecondsOutOfRange = errors.New("microseconds out of encodable range")
)

// Header precedes each captured chunk in a recording.
type Header struct {
	// Sec is the number of whole seconds since the Unix epoch.
	Sec uint64
	// Usec is the sub-second component, in microseconds.
	//
	// Its legal range is [0, MaxMicroseconds], but decoding passes through
	// anything that fits in 20 bits so historical files re-encode exactly.
	Usec uint32
	// Len is the number of payload bytes that follow the header.
	Len uint32
}

// MakeHeader returns a Header stamped with t for a payload of n bytes.
//
// t is truncated to microsecond precision. Times before the Unix epoch can't be
// represented and return an error.
func MakeHeader(t time.Time, n uint32) (Header, error) {
	sec, nsec := t.Unix(), t.Nanosecond()
	if sec < 0 {
		return Header{}, errors.Errorf("time %s precedes the epoch", t)
	}
	h := Header{
		Sec:  uint64(sec),
		Usec: uint32(nsec / int(time.Microsecond)),
		Len:  n,
	}
	if h.Sec > MaxSeconds {
		return Header{}, errors.Wrapf(ErrSecondsOutOfRange, "time %s", t)
	}
	return h, nil
}

// Time returns the Header's timestamp.
func (h Header) Time() time.Time {
	return time.Unix(int64(h.Sec), int64(h.Usec)*int64(time.Microsecond))
}

// Validate returns an error if h is outside of its documented ranges.
//
// Encoding is more lenient than Validate; see Codec.Encode.
func (h Header) Validate() error {
	if h.Sec > MaxSeconds {
		return ErrSecondsOutOfRange
	}
	if h.Usec > MaxMicroseconds {
		return errors.Wrapf(ErrMicrosecondsOutOfRange, "%d exceeds %d", h.Usec, MaxMicroseconds)
	}
	return nil
}

func (h Header) String() string {
	return fmt.Sprintf("%d.%06d len=%d", h.Sec, h.Usec, h.Len)
}

// Codec encodes and decodes Headers.
//
// The zero value is ready to use and normalizes through endian.Host.
type Codec struct {
	// Order, if set, overrides the host byte order. It exists so that other
	// host orders can be exercised.
	Order endian.Normalizer
}

func (c Codec) order() endian.Normalizer {
	if c.Order.Order() != nil {
		return c.Order
	}
	return endian.Host
}

// Encode packs h into the first HeaderSize bytes of buf.
//
// Encode rejects values that would spill into neighbouring fields: seconds
// beyond MaxSeconds and microseconds wider than 20 bits. Microseconds between
// MaxMicroseconds and the 20-bit limit are written unchanged.
func (c Codec) Encode(buf []byte, h *Header) error {
	if len(buf) < HeaderSize {
		return errors.Errorf("buffer too small for header (%d < %d)", len(buf), HeaderSize)
	}
	if h.Sec > MaxSeconds {
		return errors.Wrapf(ErrSecondsOutOfRange, "%d exceeds %d", h.Sec, MaxSeconds)
	}
	if h.Usec > usecMask {
		return errors.Wrapf(ErrMicrosecondsOutOfRange, "%d exceeds %d", h.Usec, usecMask)
	}

	o := c.order()
	o.Store(buf[0:4], uint32(h.Sec))
	o.Store(buf[4:8], h.Usec|uint32((h.Sec>>secHighShift)&secHighMask))
	o.Store(buf[8:12], h.Len)
	return nil
}

// Decode unpacks the first HeaderSize bytes of buf into h.
//
// buf must be at least HeaderSize bytes long.
func (c Codec) Decode(buf []byte, h *Header) {
	o := c.order()
	low := o.Load(buf[0:4])
	packed := o.Load(buf[4:8])

	h.Sec = uint64(low) | (uint64(packed&secHighMask) << secHighShift)
	h.Usec = packed & usecMask
	h.Len = o.Load(buf[8:12])
}

// ReadHeader reads the next Header from r.
//
// If fewer than HeaderSize bytes remain in r, including none at all, the
// stream has ended and ReadHeader returns io.EOF. A trailing partial header is
// discarded. Other read errors are returned wrapped.
func (c Codec) ReadHeader(r io.Reader, h *Header) error {
	var buf [HeaderSize]byte
	switch _, err := dataio.ReadFull(r, buf[:]); err {
	case nil:
		c.Decode(buf[:], h)
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return io.EOF
	default:
		return errors.Wrap(err, "reading header")
	}
}

// WriteHeader writes h to w.
//
// Unlike ReadHeader, every failure is returned, including short writes.
func (c Codec) WriteHeader(w io.Writer, h *Header) error {
	var buf [HeaderSize]byte
	if err := c.Encode(buf[:], h); err != nil {
		return err
	}
	if err := dataio.WriteFull(w, buf[:]); err != nil {
		return errors.Wrap(err, "writing header")
	}
	return nil
}

// ReadHeader reads a Header from r using the host byte order.
//
// See Codec.ReadHeader.
func ReadHeader(r io.Reader, h *Header) error { return Codec{}.ReadHeader(r, h) }

// WriteHeader writes h to w using the host byte order.
//
// See Codec.WriteHeader.
func WriteHeader(w io.Writer, h *Header) error { return Codec{}.WriteHeader(w, h) }
