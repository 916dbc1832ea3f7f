// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"time"

	"github.com/danjacques/gottyrec/support/logging"
)

// Config configures how recordings are read and written.
//
// The zero value reads and writes uncompressed recordings and stamps frames
// with time.Now.
type Config struct {
	// WriterCompression is the compression to use when writing a recording.
	// CompressionAuto is not valid here.
	WriterCompression Compression
	// WriterCompressionLevel is the compression level to apply to
	// WriterCompression, if applicable. Zero or negative values select the
	// default.
	WriterCompressionLevel int

	// ReaderCompression is the compression to expect when reading.
	// CompressionAuto detects it from the stream.
	ReaderCompression Compression

	// Codec is the header codec to use.
	Codec Codec

	// TempDir is the temporary directory to stage converted files in. If
	// empty, the destination's directory is used.
	TempDir string

	// NowFunc, if not nil, is the function to use to get the current time. If
	// nil, time.Now will be used.
	NowFunc func() time.Time

	// Logger, if not nil, receives diagnostic logging.
	Logger logging.L
}

func (cfg *Config) now() time.Time {
	if cfg.NowFunc != nil {
		return cfg.NowFunc()
	}
	return time.Now()
}

func (cfg *Config) logger() logging.L { return logging.Must(cfg.Logger) }
