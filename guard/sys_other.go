// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build !unix

package guard

import (
	"github.com/pkg/errors"
)

var errUnsupported = errors.New("descriptor duplication is not supported on this platform")

func dup(fd int) (int, error) { return -1, errUnsupported }

func dup2(oldfd, newfd int) error { return errUnsupported }

func checkAccess(fd, flag int) error { return nil }
