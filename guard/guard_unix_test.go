// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build unix

package guard

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Descriptors", func() {
	var tdir string
	var stderr bytes.Buffer
	var g *Guard

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "guard_fd_test")
		Expect(err).ToNot(HaveOccurred())
		stderr.Reset()
		g = testGuard("ttyrec", &stderr)
	})

	AfterEach(func() {
		_ = os.RemoveAll(tdir)
	})

	writeFile := func(name, contents string) string {
		path := filepath.Join(tdir, name)
		Expect(os.WriteFile(path, []byte(contents), 0644)).To(Succeed())
		return path
	}

	Context("Dup", func() {
		It("duplicates a descriptor", func() {
			f, err := os.Open(writeFile("in", "ohai"))
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()

			fd := g.MustDup(int(f.Fd()))
			Expect(fd).ToNot(Equal(int(f.Fd())))

			s := g.MustFDOpen(fd, "r")
			defer s.Close()
			data, err := io.ReadAll(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("ohai"))
		})

		It("reports a bad descriptor", func() {
			_, err := Dup(-1)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("dup failed: " + syscall.EBADF.Error()))
		})

		It("terminates with a diagnostic", func() {
			Expect(expectExit(func() { g.MustDup(-1) })).To(Equal(ExitFailure))
			Expect(stderr.String()).To(Equal("ttyrec: dup failed: " + syscall.EBADF.Error() + "\n"))
		})
	})

	Context("Dup2", func() {
		It("duplicates onto a specific descriptor", func() {
			src, err := os.Open(writeFile("src", "source"))
			Expect(err).ToNot(HaveOccurred())
			defer src.Close()

			dst, err := os.Open(writeFile("dst", "destination"))
			Expect(err).ToNot(HaveOccurred())
			defer dst.Close()

			target := int(dst.Fd())
			Expect(g.MustDup2(int(src.Fd()), target)).To(Equal(target))

			// dst's descriptor now refers to src's file.
			data, err := io.ReadAll(dst)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("source"))
		})

		It("accepts duplicating a descriptor onto itself", func() {
			f, err := os.Open(writeFile("in", "ohai"))
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()

			fd := int(f.Fd())
			Expect(Dup2(fd, fd)).To(Equal(fd))
		})

		It("terminates with a diagnostic", func() {
			Expect(expectExit(func() { g.MustDup2(-1, 1000) })).To(Equal(ExitFailure))
			Expect(stderr.String()).To(Equal("ttyrec: dup2 failed: " + syscall.EBADF.Error() + "\n"))
		})
	})

	Context("FDOpen", func() {
		It("wraps a writable descriptor", func() {
			path := filepath.Join(tdir, "out")
			f, err := os.Create(path)
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()

			s := g.MustFDOpen(g.MustDup(int(f.Fd())), "w")
			_, err = s.Write([]byte("ohai"))
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Close()).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("ohai"))
		})

		It("rejects a mode the descriptor doesn't permit", func() {
			f, err := os.Open(writeFile("in", "ohai"))
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()

			_, err = FDOpen(int(f.Fd()), "w")
			Expect(errors.Cause(err)).To(Equal(syscall.EINVAL))
		})

		It("terminates with a diagnostic on a bad descriptor", func() {
			Expect(expectExit(func() { g.MustFDOpen(-1, "r") })).To(Equal(ExitFailure))
			Expect(stderr.String()).To(Equal("ttyrec: fdopen failed: " + syscall.EBADF.Error() + "\n"))
		})
	})
})
