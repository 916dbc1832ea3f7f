// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrTruncatedPayload is returned when a stream ends part-way through a
	// frame's payload.
	ErrTruncatedPayload = errors.New("payload truncated")

	// ErrPayloadTooLarge is returned when a payload's length can't be
	// represented in a Header.
	ErrPayloadTooLarge = errors.New("payload too large for a single frame")
)

// maxPayload is the largest payload a single frame can carry.
const maxPayload = math.MaxUint32

// Frame is a Header and the payload that follows it.
type Frame struct {
	Header

	// Payload is the frame's payload. When returned by a Reader, it is only
	// valid until the next ReadFrame call.
	Payload []byte
}

// Reader reads frames from a recording.
//
// Reader must be instantiated using Config.NewReader.
type Reader struct {
	cfg *Config

	// rsr removes stream compression.
	rsr rawStreamReader

	// frame is reused between reads.
	frame Frame
	// payload backs frame.Payload.
	payload bytes.Buffer

	// frames is the number of frames read so far.
	frames int64
}

// NewReader creates a Reader that reads frames from r.
func (cfg *Config) NewReader(r io.Reader) (*Reader, error) {
	rd := Reader{
		cfg: cfg,
	}
	if err := rd.rsr.reset(r, cfg.ReaderCompression); err != nil {
		readerErrors.WithLabelValues("compression").Inc()
		return nil, err
	}

	cfg.logger().Debugw("Opened recording for reading.", "compression", rd.rsr.comp)
	return &rd, nil
}

// Compression returns the stream compression in effect. If the Reader was
// configured with CompressionAuto, this is the detected compression.
func (r *Reader) Compression() Compression { return r.rsr.comp }

// Frames returns the number of frames that have been read.
func (r *Reader) Frames() int64 { return r.frames }

// ReadFrame returns the next frame in the recording.
//
// The returned Frame, and its Payload, are owned by the Reader and are only
// valid until the next ReadFrame call.
//
// If the end of the recording is encountered, including a partial trailing
// header, ReadFrame will return io.EOF. If the recording ends part-way through
// a payload, ReadFrame returns an error wrapping ErrTruncatedPayload.
func (r *Reader) ReadFrame() (*Frame, error) {
	switch err := r.cfg.Codec.ReadHeader(r.rsr, &r.frame.Header); err {
	case nil:
	case io.EOF:
		r.cfg.logger().Debugw("Reached end of recording.", "frames", r.frames)
		return nil, io.EOF
	default:
		readerErrors.WithLabelValues("header").Inc()
		return nil, err
	}

	// Let the buffer grow as data arrives, rather than trusting a (possibly
	// corrupt) length with an up-front allocation.
	r.payload.Reset()
	lr := io.LimitedReader{
		R: r.rsr,
		N: int64(r.frame.Len),
	}
	amt, err := r.payload.ReadFrom(&lr)
	if err != nil {
		readerErrors.WithLabelValues("payload").Inc()
		return nil, errors.Wrapf(err, "reading payload of frame #%d", r.frames)
	}
	if amt != int64(r.frame.Len) {
		readerErrors.WithLabelValues("truncated").Inc()
		r.cfg.logger().Warnf("Recording ends inside frame #%d (%d of %d payload bytes).",
			r.frames, amt, r.frame.Len)
		return nil, errors.Wrapf(ErrTruncatedPayload, "frame #%d has %d of %d bytes", r.frames, amt, r.frame.Len)
	}
	r.frame.Payload = r.payload.Bytes()

	r.frames++
	readerFrames.Inc()
	readerPayloadBytes.Add(float64(amt))
	return &r.frame, nil
}

// Writer writes frames to a recording.
//
// Writer must be instantiated using Config.NewWriter, and must be closed to
// finalize the recording.
type Writer struct {
	cfg *Config

	// rsw applies stream compression.
	rsw *rawStreamWriter

	frames int64
	bytes  int64
}

var _ io.WriteCloser = (*Writer)(nil)

// NewWriter creates a Writer that writes frames to w.
//
// The Writer does not take ownership of w; closing the Writer finalizes the
// recording but leaves w open.
func (cfg *Config) NewWriter(w io.Writer) (*Writer, error) {
	rsw, err := newRawStreamWriter(w, cfg.WriterCompression, cfg.WriterCompressionLevel)
	if err != nil {
		return nil, err
	}
	return &Writer{
		cfg: cfg,
		rsw: rsw,
	}, nil
}

// Frames returns the number of frames that have been written.
func (w *Writer) Frames() int64 { return w.frames }

// Bytes returns the number of payload bytes that have been written.
func (w *Writer) Bytes() int64 { return w.bytes }

// WriteFrame writes f to the recording.
//
// The header's Len is taken from the length of f.Payload; f.Len is ignored.
func (w *Writer) WriteFrame(f *Frame) error {
	if uint64(len(f.Payload)) > maxPayload {
		writerErrors.WithLabelValues("size").Inc()
		return errors.Wrapf(ErrPayloadTooLarge, "%d bytes", len(f.Payload))
	}

	h := f.Header
	h.Len = uint32(len(f.Payload))
	if err := w.cfg.Codec.WriteHeader(w.rsw, &h); err != nil {
		writerErrors.WithLabelValues("header").Inc()
		return err
	}

	if len(f.Payload) > 0 {
		if _, err := w.rsw.Write(f.Payload); err != nil {
			writerErrors.WithLabelValues("payload").Inc()
			return errors.Wrapf(err, "writing payload of frame #%d", w.frames)
		}
	}

	w.frames++
	w.bytes += int64(len(f.Payload))
	writerFrames.Inc()
	writerPayloadBytes.Add(float64(len(f.Payload)))
	return nil
}

// Write records p as a frame stamped with the current time.
//
// Write lets a Writer sit at the end of an io.Copy from a terminal. Payloads
// too large for one frame are split across several frames with the same
// timestamp. An empty p records nothing.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	h, err := MakeHeader(w.cfg.now(), 0)
	if err != nil {
		writerErrors.WithLabelValues("timestamp").Inc()
		return 0, err
	}

	limit := uint64(maxPayload)
	written := 0
	for {
		chunk := p[written:]
		if uint64(len(chunk)) > limit {
			chunk = chunk[:limit]
		}
		if err := w.WriteFrame(&Frame{Header: h, Payload: chunk}); err != nil {
			return written, err
		}

		written += len(chunk)
		if written >= len(p) {
			return written, nil
		}
	}
}

// Flush pushes all buffered frames to the underlying writer.
func (w *Writer) Flush() error { return w.rsw.Flush() }

// Close finalizes the recording, flushing any buffered data.
func (w *Writer) Close() error {
	if err := w.rsw.Close(); err != nil {
		return errors.Wrap(err, "finalizing recording")
	}
	w.cfg.logger().Debugw("Finalized recording.", "frames", w.frames, "bytes", w.bytes)
	return nil
}
