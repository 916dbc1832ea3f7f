// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package guard acquires files and descriptors for recording I/O.
//
// It has two layers. Open, Dup, Dup2 and FDOpen attempt an acquisition and
// return an *Error describing any failure. A Guard wraps each of them in a
// Must variant that never returns an invalid handle: on failure it prints
//
//	<name>: <context>: <system error>
//
// to its error stream and terminates the process.
package guard

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ExitFailure is the status a Guard exits with.
const ExitFailure = 1

const (
	contextDup    = "dup failed"
	contextDup2   = "dup2 failed"
	contextFDOpen = "fdopen failed"
)

// Error is an acquisition failure.
type Error struct {
	// Context identifies what was being acquired: a path, or the failed
	// operation.
	Context string
	// Err is the system error.
	Err error
}

func (e *Error) Error() string { return e.Context + ": " + e.Err.Error() }

// Cause implements pkg/errors' causer.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the system error.
func (e *Error) Unwrap() error { return e.Err }

// systemError strips os wrappers from err, leaving the platform error.
func systemError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var se *os.SyscallError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}

// ParseMode converts an fopen-style mode string into os.OpenFile flags.
//
// The mode is one of "r", "w", "a", optionally followed by "+" for update.
// The "b" modifier is accepted and ignored, and "x" requests exclusive
// creation. Anything else is invalid.
func ParseMode(mode string) (int, error) {
	if mode == "" {
		return 0, syscall.EINVAL
	}

	var flag int
	switch mode[0] {
	case 'r':
		flag = os.O_RDONLY
	case 'w':
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case 'a':
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return 0, syscall.EINVAL
	}

	for _, c := range mode[1:] {
		switch c {
		case '+':
			flag &^= os.O_RDONLY | os.O_WRONLY
			flag |= os.O_RDWR
		case 'b':
		case 'x':
			if mode[0] != 'w' {
				return 0, syscall.EINVAL
			}
			flag |= os.O_EXCL
		default:
			return 0, syscall.EINVAL
		}
	}
	return flag, nil
}

// Open opens the file at path with an fopen-style mode.
func Open(path, mode string) (*Stream, error) {
	flag, err := ParseMode(mode)
	if err != nil {
		return nil, &Error{Context: path, Err: err}
	}

	f, err := os.OpenFile(path, flag, 0666)
	if err != nil {
		return nil, &Error{Context: path, Err: systemError(err)}
	}
	return newStream(f), nil
}

// Dup duplicates fd onto the lowest available descriptor.
func Dup(fd int) (int, error) {
	nfd, err := dup(fd)
	if err != nil {
		return -1, &Error{Context: contextDup, Err: err}
	}
	return nfd, nil
}

// Dup2 duplicates oldfd onto newfd, closing whatever newfd previously
// referred to. It returns newfd.
func Dup2(oldfd, newfd int) (int, error) {
	if err := dup2(oldfd, newfd); err != nil {
		return -1, &Error{Context: contextDup2, Err: err}
	}
	return newfd, nil
}

// FDOpen wraps an open descriptor in a Stream. The descriptor's access mode
// must permit the operations that mode asks for.
//
// The Stream takes ownership of fd.
func FDOpen(fd int, mode string) (*Stream, error) {
	flag, err := ParseMode(mode)
	if err != nil {
		return nil, &Error{Context: contextFDOpen, Err: err}
	}
	if fd < 0 {
		return nil, &Error{Context: contextFDOpen, Err: syscall.EBADF}
	}
	if err := checkAccess(fd, flag); err != nil {
		return nil, &Error{Context: contextFDOpen, Err: err}
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("/dev/fd/%d", fd))
	if f == nil {
		return nil, &Error{Context: contextFDOpen, Err: syscall.EBADF}
	}
	return newStream(f), nil
}

// Guard performs acquisitions that terminate the process on failure.
//
// The zero value reports to os.Stderr with an empty program name and exits
// through os.Exit.
type Guard struct {
	// Name is the program name that prefixes each diagnostic.
	Name string
	// Stderr, if not nil, receives diagnostics instead of os.Stderr.
	Stderr io.Writer
	// Exit, if not nil, is called instead of os.Exit. It must not return.
	Exit func(code int)
}

func (g *Guard) fail(err error) {
	stderr := g.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	fmt.Fprintf(stderr, "%s: %s\n", g.Name, err)

	exit := g.Exit
	if exit == nil {
		exit = os.Exit
	}
	exit(ExitFailure)
	panic(errors.Errorf("guard exit function returned after: %s", err))
}

// MustOpen is Open, terminating the process on failure.
func (g *Guard) MustOpen(path, mode string) *Stream {
	s, err := Open(path, mode)
	if err != nil {
		g.fail(err)
	}
	return s
}

// MustDup is Dup, terminating the process on failure.
func (g *Guard) MustDup(fd int) int {
	nfd, err := Dup(fd)
	if err != nil {
		g.fail(err)
	}
	return nfd
}

// MustDup2 is Dup2, terminating the process on failure.
func (g *Guard) MustDup2(oldfd, newfd int) int {
	fd, err := Dup2(oldfd, newfd)
	if err != nil {
		g.fail(err)
	}
	return fd
}

// MustFDOpen is FDOpen, terminating the process on failure.
func (g *Guard) MustFDOpen(fd int, mode string) *Stream {
	s, err := FDOpen(fd, mode)
	if err != nil {
		g.fail(err)
	}
	return s
}
