// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"

	"github.com/danjacques/gottyrec/support/dataio"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Compression is a whole-stream compression applied around the frame stream.
type Compression int32

const (
	// CompressionNone stores frames as-is. This is the classic format that
	// every ttyrec reader understands.
	CompressionNone Compression = iota
	// CompressionSnappy uses the Snappy framing format.
	CompressionSnappy
	// CompressionGzip uses gzip.
	CompressionGzip
	// CompressionAuto, valid only for reading, sniffs the stream's leading
	// bytes to choose between the other compressions.
	CompressionAuto
)

// compressionNames maps each Compression to its flag name.
var compressionNames = map[Compression]string{
	CompressionNone:   "NONE",
	CompressionSnappy: "SNAPPY",
	CompressionGzip:   "GZIP",
	CompressionAuto:   "AUTO",
}

func (c Compression) String() string {
	if v, ok := compressionNames[c]; ok {
		return v
	}
	return "UNKNOWN"
}

// ParseCompression returns the Compression named v.
func ParseCompression(v string) (Compression, error) {
	for c, name := range compressionNames {
		if name == v {
			return c, nil
		}
	}
	return 0, errors.Errorf("unknown compression type: %q", v)
}

const (
	// rawStreamBufferSize is the buffer size placed between the file and any
	// compression layer.
	rawStreamBufferSize = 64 * 1024
)

var (
	// snappyMagic is the stream identifier chunk that begins every Snappy
	// framed stream.
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
	// gzipMagic is the gzip member header ID followed by the deflate method.
	gzipMagic = []byte{0x1f, 0x8b, 0x08}
)

// DetectCompression inspects the leading bytes of br, without consuming them,
// and returns the Compression that produced them.
//
// An empty stream, or one that matches no known signature, is reported as
// CompressionNone. A raw recording whose first timestamp begins with the gzip
// signature is told apart by trying to decode the gzip stream from the bytes
// that br has buffered. Callers that know better should still specify a
// Compression explicitly.
func DetectCompression(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(len(snappyMagic))
	if err != nil && err != io.EOF {
		return CompressionNone, errors.Wrap(err, "peeking stream signature")
	}

	switch {
	case bytes.HasPrefix(head, snappyMagic):
		return CompressionSnappy, nil
	case bytes.HasPrefix(head, gzipMagic):
		window, err := br.Peek(br.Size())
		if err != nil && err != io.EOF {
			return CompressionNone, errors.Wrap(err, "peeking gzip stream")
		}
		if isGzip(window, len(window) == br.Size()) {
			return CompressionGzip, nil
		}
		return CompressionNone, nil
	default:
		return CompressionNone, nil
	}
}

// isGzip reports whether window begins a gzip stream: its member header
// parses and its first decompressed byte can be produced. If partial is true,
// window is only a prefix of the stream, and running out of data is not held
// against it.
func isGzip(window []byte, partial bool) bool {
	gz, err := gzip.NewReader(bytes.NewReader(window))
	if err != nil {
		return partial && err == io.ErrUnexpectedEOF
	}

	var b [1]byte
	switch _, err := gz.Read(b[:]); err {
	case nil, io.EOF:
		return true
	case io.ErrUnexpectedEOF:
		return partial
	default:
		return false
	}
}

// rawStreamReader removes stream compression from a base reader.
type rawStreamReader struct {
	// Currently connected to the source reader.
	dataio.Reader

	// comp is the compression in effect after reset.
	comp Compression

	br      *bufio.Reader
	snappyR *snappy.Reader
	gzipR   *gzip.Reader
}

func (r *rawStreamReader) reset(base io.Reader, comp Compression) error {
	if r.br == nil {
		r.br = bufio.NewReaderSize(base, rawStreamBufferSize)
	} else {
		r.br.Reset(base)
	}

	if comp == CompressionAuto {
		var err error
		if comp, err = DetectCompression(r.br); err != nil {
			return err
		}
	}
	r.comp = comp

	switch comp {
	case CompressionSnappy:
		if r.snappyR == nil {
			r.snappyR = snappy.NewReader(r.br)
		} else {
			r.snappyR.Reset(r.br)
		}
		r.Reader = dataio.MakeReader(r.snappyR)

	case CompressionGzip:
		if r.gzipR == nil {
			gz, err := gzip.NewReader(r.br)
			if err != nil {
				return errors.Wrap(err, "creating gzip reader")
			}
			r.gzipR = gz
		} else {
			if err := r.gzipR.Reset(r.br); err != nil {
				return errors.Wrap(err, "resetting gzip reader")
			}
		}
		r.Reader = dataio.MakeReader(r.gzipR)

	case CompressionNone:
		r.Reader = r.br

	default:
		return errors.Errorf("unknown compression: %s", comp)
	}
	return nil
}

// rawStreamWriter applies stream compression on top of a base writer.
//
// Closing a rawStreamWriter finishes the compressed stream and flushes it, but
// leaves the base writer open.
type rawStreamWriter struct {
	dataio.Writer

	bw      *bufio.Writer
	snappyW *snappy.Writer
	gzipW   *gzip.Writer
}

func newRawStreamWriter(base io.Writer, comp Compression, level int) (*rawStreamWriter, error) {
	w := rawStreamWriter{
		bw: bufio.NewWriterSize(base, rawStreamBufferSize),
	}

	switch comp {
	case CompressionSnappy:
		w.snappyW = snappy.NewBufferedWriter(w.bw)
		w.Writer = dataio.MakeWriter(w.snappyW)

	case CompressionGzip:
		if level <= 0 {
			level = gzip.DefaultCompression
		}

		gw, err := gzip.NewWriterLevel(w.bw, level)
		if err != nil {
			return nil, errors.Wrap(err, "creating gzip writer")
		}
		w.gzipW = gw
		w.Writer = dataio.MakeWriter(w.gzipW)

	case CompressionNone:
		w.Writer = w.bw

	default:
		return nil, errors.Errorf("unsupported writer compression: %s", comp)
	}
	return &w, nil
}

// Flush pushes buffered data through the compression layer to the base
// writer.
func (w *rawStreamWriter) Flush() error {
	switch {
	case w.snappyW != nil:
		if err := w.snappyW.Flush(); err != nil {
			return err
		}
	case w.gzipW != nil:
		if err := w.gzipW.Flush(); err != nil {
			return err
		}
	}
	return w.bw.Flush()
}

func (w *rawStreamWriter) Close() error {
	if w.snappyW != nil {
		if err := w.snappyW.Close(); err != nil {
			return err
		}
	}
	if w.gzipW != nil {
		if err := w.gzipW.Close(); err != nil {
			return err
		}
	}
	return w.bw.Flush()
}
