// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build unix && !linux

package guard

import (
	"golang.org/x/sys/unix"
)

func dup2(oldfd, newfd int) error { return unix.Dup2(oldfd, newfd) }
