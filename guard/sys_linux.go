// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build linux

package guard

import (
	"golang.org/x/sys/unix"
)

// dup2 is implemented with dup3, which not every Linux architecture pairs with
// a dup2 system call.
func dup2(oldfd, newfd int) error {
	if oldfd == newfd {
		// dup3 rejects this; dup2 succeeds if the descriptor is valid.
		_, err := unix.FcntlInt(uintptr(oldfd), unix.F_GETFD, 0)
		return err
	}
	return unix.Dup3(oldfd, newfd, 0)
}
