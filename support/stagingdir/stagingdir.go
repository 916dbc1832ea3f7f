// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir builds output files in a private temporary directory and
// atomically moves them into place once they are complete.
package stagingdir

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// D manages a staging directory.
//
// While D is active, its files reside in a temporary location. Each file can
// be committed, which atomically renames it to its destination. Destroy
// removes the directory along with anything that was not committed.
//
// Commit uses rename, so the staging directory must be on the same filesystem
// as the destination.
type D struct {
	// path is the path of the staging directory.
	path string
}

// New creates a new staging directory underneath of tempDir.
//
// The directory will be created with the specified prefix.
func New(tempDir, prefix string) (*D, error) {
	stagingPath, err := os.MkdirTemp(tempDir, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "creating staging directory")
	}
	return &D{path: stagingPath}, nil
}

// Path returns the staging path of the file called name.
func (sd *D) Path(name string) string {
	if sd.path == "" {
		panic("staging directory has been destroyed")
	}
	return filepath.Join(sd.path, filepath.Base(name))
}

// Create creates the file called name in the staging directory.
func (sd *D) Create(name string) (*os.File, error) {
	fd, err := os.Create(sd.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "creating staged file %q", name)
	}
	return fd, nil
}

// Commit atomically moves the staged file called name to dest, replacing
// anything that is already there.
func (sd *D) Commit(name, dest string) error {
	if sd.path == "" {
		return errors.New("invalid staging directory")
	}

	src := sd.Path(name)
	if err := os.Rename(src, dest); err != nil {
		return errors.Wrapf(err, "moving staged file into place (%q => %q)", src, dest)
	}
	return nil
}

// Destroy purges the staging directory and its contents.
//
// Destroy is safe to call more than once.
func (sd *D) Destroy() error {
	if sd.path == "" {
		// There is nothing to destroy.
		return nil
	}

	if err := os.RemoveAll(sd.path); err != nil {
		return err
	}

	sd.path = "" // Destroyed.
	return nil
}
