// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"testing/iotest"
	"time"

	"github.com/danjacques/gottyrec/endian"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

// wireRecord is the on-disk header layout, described independently of Codec.
type wireRecord struct {
	Sec    uint32 `struc:"uint32,little"`
	Packed uint32 `struc:"uint32,little"`
	Len    uint32 `struc:"uint32,little"`
}

// dataThenError returns all of its data in one read, together with err.
type dataThenError struct {
	data []byte
	err  error
}

func (r *dataThenError) Read(p []byte) (int, error) {
	amt := copy(p, r.data)
	r.data = r.data[amt:]
	return amt, r.err
}

func encodeHeader(c Codec, h Header) []byte {
	var buf bytes.Buffer
	Expect(c.WriteHeader(&buf, &h)).To(Succeed())
	Expect(buf.Len()).To(Equal(HeaderSize))
	return buf.Bytes()
}

func decodeHeader(c Codec, data []byte) Header {
	var h Header
	Expect(c.ReadHeader(bytes.NewReader(data), &h)).To(Succeed())
	return h
}

var _ = Describe("Header", func() {
	var bigEndian Codec

	BeforeEach(func() {
		n, err := endian.New(binary.BigEndian)
		Expect(err).ToNot(HaveOccurred())
		bigEndian = Codec{Order: n}
	})

	DescribeTable("round-trips through the codec",
		func(h Header) {
			for _, c := range []Codec{{}, bigEndian} {
				data := encodeHeader(c, h)
				Expect(decodeHeader(c, data)).To(Equal(h))
			}
		},
		Entry("zero", Header{}),
		Entry("typical", Header{Sec: 1000000000, Usec: 500000, Len: 42}),
		Entry("32-bit boundary", Header{Sec: 0xFFFFFFFF, Usec: 999999, Len: 1}),
		Entry("past 32-bit boundary", Header{Sec: 0x100000000, Usec: 1, Len: 2}),
		Entry("largest values", Header{Sec: MaxSeconds, Usec: MaxMicroseconds, Len: math.MaxUint32}),
		Entry("sub-second bits set", Header{Sec: 0xABCDE12345, Usec: 0xF4240 - 1, Len: 0}),
	)

	It("round-trips random valid headers", func() {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 1000; i++ {
			h := Header{
				Sec:  uint64(rng.Int63n(int64(MaxSeconds) + 1)),
				Usec: uint32(rng.Intn(MaxMicroseconds + 1)),
				Len:  rng.Uint32(),
			}
			Expect(decodeHeader(Codec{}, encodeHeader(Codec{}, h))).To(Equal(h))
		}
	})

	It("encodes the zero header as twelve zero bytes", func() {
		Expect(encodeHeader(Codec{}, Header{})).To(Equal(make([]byte, HeaderSize)))
		Expect(decodeHeader(Codec{}, make([]byte, HeaderSize))).To(Equal(Header{}))
	})

	It("encodes a known header", func() {
		data := encodeHeader(Codec{}, Header{Sec: 1000000000, Usec: 500000, Len: 42})
		Expect(data).To(Equal([]byte{
			0x00, 0xCA, 0x9A, 0x3B, // 1000000000
			0x20, 0xA1, 0x07, 0x00, // 500000
			0x2A, 0x00, 0x00, 0x00, // 42
		}))
	})

	It("carries seconds past 32 bits in the packed word", func() {
		before := encodeHeader(Codec{}, Header{Sec: 0xFFFFFFFF})
		Expect(before[0:4]).To(Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
		Expect(before[4:8]).To(Equal([]byte{0x00, 0x00, 0x00, 0x00}))

		after := encodeHeader(Codec{}, Header{Sec: 0xFFFFFFFF + 1})
		Expect(after[0:4]).To(Equal([]byte{0x00, 0x00, 0x00, 0x00}))
		Expect(after[4:8]).To(Equal([]byte{0x00, 0x00, 0x10, 0x00}))

		Expect(decodeHeader(Codec{}, after).Sec).To(Equal(uint64(0x100000000)))
	})

	It("produces the same bytes on a big-endian host", func() {
		h := Header{Sec: 0x123456789AB, Usec: 654321, Len: 0xDEADBEEF}
		Expect(encodeHeader(bigEndian, h)).To(Equal(encodeHeader(Codec{}, h)))
	})

	It("matches an independently packed wire record", func() {
		h := Header{Sec: 0xABC12345678, Usec: 123456, Len: 1337}

		var expected bytes.Buffer
		err := struc.Pack(&expected, &wireRecord{
			Sec:    0x12345678,
			Packed: 123456 | (0xABC << 20),
			Len:    1337,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(encodeHeader(Codec{}, h)).To(Equal(expected.Bytes()))

		var rec wireRecord
		Expect(struc.Unpack(bytes.NewReader(encodeHeader(Codec{}, h)), &rec)).To(Succeed())
		Expect(rec.Len).To(Equal(uint32(1337)))
	})

	Context("microseconds beyond the documented range", func() {
		h := Header{Sec: 7, Usec: 0xFFFFF, Len: 3}

		It("passes them through unchanged", func() {
			data := encodeHeader(Codec{}, h)
			Expect(decodeHeader(Codec{}, data)).To(Equal(h))
		})

		It("flags them in Validate", func() {
			Expect(errors.Cause(h.Validate())).To(Equal(ErrMicrosecondsOutOfRange))
			Expect(Header{Sec: MaxSeconds, Usec: MaxMicroseconds}.Validate()).To(Succeed())
		})

		It("rejects values wider than 20 bits", func() {
			var buf bytes.Buffer
			err := WriteHeader(&buf, &Header{Usec: 0x100000})
			Expect(errors.Cause(err)).To(Equal(ErrMicrosecondsOutOfRange))
			Expect(buf.Len()).To(Equal(0))
		})
	})

	It("rejects seconds beyond 44 bits", func() {
		var buf bytes.Buffer
		err := WriteHeader(&buf, &Header{Sec: MaxSeconds + 1})
		Expect(errors.Cause(err)).To(Equal(ErrSecondsOutOfRange))
		Expect(buf.Len()).To(Equal(0))
	})

	It("rejects a short encode buffer", func() {
		Expect(Codec{}.Encode(make([]byte, HeaderSize-1), &Header{})).ToNot(Succeed())
	})

	Context("ReadHeader", func() {
		It("reports end of stream for every truncated header", func() {
			full := encodeHeader(Codec{}, Header{Sec: 1, Usec: 2, Len: 3})
			for n := 0; n < HeaderSize; n++ {
				h := Header{Sec: 99}
				err := ReadHeader(bytes.NewReader(full[:n]), &h)
				Expect(err).To(Equal(io.EOF), "with %d byte(s)", n)
				Expect(h).To(Equal(Header{Sec: 99}), "with %d byte(s)", n)
			}
		})

		It("reads consecutive headers, then end of stream", func() {
			var buf bytes.Buffer
			Expect(WriteHeader(&buf, &Header{Sec: 1, Len: 0})).To(Succeed())
			Expect(WriteHeader(&buf, &Header{Sec: 2, Len: 0})).To(Succeed())
			buf.WriteByte(0xFF)

			r := iotest.OneByteReader(&buf)
			var h Header
			Expect(ReadHeader(r, &h)).To(Succeed())
			Expect(h.Sec).To(Equal(uint64(1)))
			Expect(ReadHeader(r, &h)).To(Succeed())
			Expect(h.Sec).To(Equal(uint64(2)))
			Expect(ReadHeader(r, &h)).To(Equal(io.EOF))
		})

		It("keeps a complete header delivered alongside a read error", func() {
			failure := errors.New("connection reset")
			full := encodeHeader(Codec{}, Header{Sec: 1, Usec: 2, Len: 3})
			r := &dataThenError{data: full, err: failure}

			var h Header
			Expect(ReadHeader(r, &h)).To(Succeed())
			Expect(h).To(Equal(Header{Sec: 1, Usec: 2, Len: 3}))
		})

		It("returns other read errors", func() {
			failure := errors.New("disk on fire")
			err := ReadHeader(iotest.ErrReader(failure), &Header{})
			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(Equal(io.EOF))
			Expect(errors.Cause(err)).To(Equal(failure))
		})
	})

	Context("WriteHeader", func() {
		It("surfaces write failures", func() {
			failure := errors.New("disk full")
			err := WriteHeader(&failingWriter{err: failure}, &Header{Sec: 1})
			Expect(errors.Cause(err)).To(Equal(failure))
		})

		It("surfaces short writes", func() {
			err := WriteHeader(&failingWriter{limit: 4}, &Header{Sec: 1})
			Expect(errors.Cause(err)).To(Equal(io.ErrShortWrite))
		})
	})

	Context("time conversion", func() {
		It("truncates to microseconds and converts back", func() {
			t := time.Date(2018, time.June, 1, 12, 30, 45, 123456789, time.UTC)
			h, err := MakeHeader(t, 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(h).To(Equal(Header{Sec: uint64(t.Unix()), Usec: 123456, Len: 5}))
			Expect(h.Time().Equal(t.Truncate(time.Microsecond))).To(BeTrue())
		})

		It("rejects times before the epoch", func() {
			_, err := MakeHeader(time.Unix(-1, 0), 0)
			Expect(err).To(HaveOccurred())
		})
	})

	It("renders as a string", func() {
		Expect(Header{Sec: 12, Usec: 34, Len: 56}.String()).To(Equal("12.000034 len=56"))
	})
})
