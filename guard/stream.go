// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package guard

import (
	"bufio"
	"os"
)

// Stream is a buffered file stream.
//
// Reads and writes are buffered independently; Flush before switching from
// writing to reading on the same Stream.
type Stream struct {
	f  *os.File
	br *bufio.Reader
	bw *bufio.Writer
}

func newStream(f *os.File) *Stream { return &Stream{f: f} }

func (s *Stream) reader() *bufio.Reader {
	if s.br == nil {
		s.br = bufio.NewReader(s.f)
	}
	return s.br
}

func (s *Stream) writer() *bufio.Writer {
	if s.bw == nil {
		s.bw = bufio.NewWriter(s.f)
	}
	return s.bw
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) { return s.reader().Read(p) }

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) { return s.reader().ReadByte() }

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) { return s.writer().Write(p) }

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(c byte) error { return s.writer().WriteByte(c) }

// Flush writes any buffered data to the file.
func (s *Stream) Flush() error {
	if s.bw == nil {
		return nil
	}
	return s.bw.Flush()
}

// Close flushes buffered data and closes the file.
func (s *Stream) Close() error {
	err := s.Flush()
	if closeErr := s.f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Fd returns the stream's file descriptor.
func (s *Stream) Fd() int { return int(s.f.Fd()) }

// Name returns the name the stream was opened with.
func (s *Stream) Name() string { return s.f.Name() }

// File returns the stream's underlying file, bypassing its buffers.
func (s *Stream) File() *os.File { return s.f }
