// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"io"
	"path/filepath"

	"github.com/danjacques/gottyrec/support/stagingdir"

	"github.com/pkg/errors"
)

// Convert copies every frame from src into a new recording at dest, written
// with cfg's writer compression. Headers are carried over bit-for-bit.
//
// The new recording is built in a staging directory and atomically moved to
// dest once it is complete. If Convert fails, dest is left untouched.
//
// Convert returns the number of frames that were copied.
func (cfg *Config) Convert(src io.Reader, dest string) (int64, error) {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Dir(dest)
	}
	name := filepath.Base(dest)

	sd, err := stagingdir.New(tempDir, "."+name+".")
	if err != nil {
		return 0, err
	}
	defer func() {
		// If we've committed, this only removes the empty directory.
		_ = sd.Destroy()
	}()

	fd, err := sd.Create(name)
	if err != nil {
		return 0, err
	}
	defer func() {
		if fd != nil {
			_ = fd.Close()
		}
	}()

	r, err := cfg.NewReader(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source recording")
	}
	w, err := cfg.NewWriter(fd)
	if err != nil {
		return 0, errors.Wrap(err, "opening destination recording")
	}

	for {
		f, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return w.Frames(), err
		}

		if err := w.WriteFrame(f); err != nil {
			return w.Frames(), err
		}
	}

	if err := w.Close(); err != nil {
		return w.Frames(), err
	}
	if err := fd.Close(); err != nil {
		return w.Frames(), errors.Wrap(err, "closing staged recording")
	}
	fd = nil // Don't double-close in defer.

	if err := sd.Commit(name, dest); err != nil {
		return w.Frames(), err
	}

	cfg.logger().Infof("Converted %d frame(s) from %s into %s (%s).",
		w.Frames(), r.Compression(), dest, cfg.WriterCompression)
	return w.Frames(), nil
}
