// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio contains byte-level I/O helpers shared by the recording
// readers and writers.
package dataio

import (
	"io"
)

// maxEmptyReads is the number of consecutive (0, nil) reads that ReadFull will
// tolerate before giving up.
const maxEmptyReads = 100

// Reader is an io.Reader that can also read individual bytes.
//
// Decompressors and buffered streams generally implement both; MakeReader
// fills in the gap for those that don't.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for r.
func MakeReader(r io.Reader) Reader {
	if dr, ok := r.(Reader); ok {
		return dr
	}
	return &byteReader{r}
}

type byteReader struct {
	io.Reader
}

func (r *byteReader) ReadByte() (byte, error) {
	var d [1]byte
	switch amt, err := r.Read(d[:]); {
	case amt == 1:
		return d[0], nil
	case err != nil:
		return 0, err
	default:
		return 0, io.ErrNoProgress
	}
}

// Writer is an io.Writer that can also write individual bytes.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// MakeWriter returns a Writer for w.
func MakeWriter(w io.Writer) Writer {
	if dw, ok := w.(Writer); ok {
		return dw
	}
	return &byteWriter{w}
}

type byteWriter struct {
	io.Writer
}

func (w *byteWriter) WriteByte(c byte) error {
	d := [1]byte{c}
	return WriteFull(w.Writer, d[:])
}

// ReadFull reads from r until buf is full, or until an error is encountered.
// It returns the number of bytes that were read.
//
// This accommodates the fact that io.Reader is allowed to return less than the
// full buffer size without erroring. If r is exhausted before anything was
// read, ReadFull returns io.EOF; if it is exhausted part-way through buf,
// ReadFull returns io.ErrUnexpectedEOF. An error that arrives with the final
// bytes of buf is dropped, since buf was filled.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	total, empty := 0, 0
	for total < len(buf) {
		amt, err := r.Read(buf[total:])
		total += amt

		switch {
		case err == io.EOF:
			switch total {
			case len(buf):
				// Finished read and returned EOF.
				return total, nil
			case 0:
				return 0, io.EOF
			default:
				return total, io.ErrUnexpectedEOF
			}

		case err != nil:
			if total == len(buf) {
				// Bytes delivered alongside an error are still valid.
				return total, nil
			}
			return total, err

		case amt == 0:
			if empty++; empty >= maxEmptyReads {
				return total, io.ErrNoProgress
			}

		default:
			empty = 0
		}
	}
	return total, nil
}

// WriteFull writes all of buf to w.
//
// A Writer that accepts fewer bytes without reporting an error yields
// io.ErrShortWrite.
func WriteFull(w io.Writer, buf []byte) error {
	switch amt, err := w.Write(buf); {
	case err != nil:
		return err
	case amt != len(buf):
		return io.ErrShortWrite
	default:
		return nil
	}
}
