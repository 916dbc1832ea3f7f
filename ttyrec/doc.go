// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package ttyrec reads and writes terminal session recordings in the ttyrec
// format.
//
// A recording is a sequence of frames. Each frame is a 12-byte Header followed
// by Header.Len bytes of captured terminal output:
//
//	offset  size  field
//	0       4     seconds, low 32 bits
//	4       4     microseconds (bits 0-19) | seconds bits 32-43 (bits 20-31)
//	8       4     payload length
//
// All three words are little-endian regardless of the host.
//
// Microseconds never need more than 20 bits, so the top 12 bits of the second
// word carry the high bits of a 44-bit seconds counter. Readers that only know
// about 32-bit seconds decode every timestamp before 2106 correctly, while
// this package can represent dates hundreds of thousands of years later
// without growing the header.
//
// The payload is opaque. The whole frame stream may optionally be wrapped in
// Snappy or gzip compression (see Compression); plain recordings are the
// default and are what other ttyrec tools expect.
package ttyrec
