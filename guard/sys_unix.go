// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build unix

package guard

import (
	"golang.org/x/sys/unix"
)

func dup(fd int) (int, error) { return unix.Dup(fd) }

// checkAccess returns an error if fd is not open, or if it was opened with an
// access mode that doesn't permit flag's.
func checkAccess(fd, flag int) error {
	fl, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return err
	}

	have, want := fl&unix.O_ACCMODE, flag&unix.O_ACCMODE
	if have != unix.O_RDWR && have != want {
		return unix.EINVAL
	}
	return nil
}
