// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package ttyconvert defines the logic for the "ttyrec-convert" tool.
//
// ttyrec-convert re-encodes a recording with a different stream compression.
// Frame headers are carried over unchanged. The destination is only replaced
// once the new recording is complete.
package ttyconvert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danjacques/gottyrec/guard"
	"github.com/danjacques/gottyrec/support/logging"
	"github.com/danjacques/gottyrec/ttyrec"

	"github.com/spf13/pflag"
)

// stdinName is the SRC argument that selects standard input.
const stdinName = "-"

// Main is the main entry point.
func Main() { os.Exit(run(os.Args, &guard.Guard{Name: filepath.Base(os.Args[0])})) }

func run(args []string, g *guard.Guard) int {
	var (
		outCompression = ttyrec.CompressionFlag(ttyrec.CompressionNone)
		inCompression  = ttyrec.CompressionFlag(ttyrec.CompressionAuto)
		level          int
		tempDir        string
		verbose        bool
	)

	progname := filepath.Base(args[0])
	fs := pflag.NewFlagSet(progname, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] SRC DEST\n\nSRC may be %q to read standard input.\n\n",
			progname, stdinName)
		fs.PrintDefaults()
	}
	fs.VarP(&outCompression, "compression", "c",
		"Compression of the new recording. Options are: "+ttyrec.CompressionFlagValues())
	fs.Var(&inCompression, "input-compression",
		"Compression of the source recording. Options are: "+ttyrec.CompressionFlagValues())
	fs.IntVarP(&level, "level", "l", -1, "Compression level, if applicable. Zero or negative selects the default.")
	fs.StringVar(&tempDir, "temp-dir", "", "Directory to stage the new recording in. Defaults to DEST's directory.")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	if outCompression.Value() == ttyrec.CompressionAuto {
		fmt.Fprintf(os.Stderr, "%s: --compression must name a concrete compression\n", progname)
		return 2
	}

	logger, err := logging.NewConsole(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: creating logger: %s\n", progname, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	src, dest := fs.Arg(0), fs.Arg(1)
	in := openSource(g, src)
	defer in.Close()

	cfg := ttyrec.Config{
		WriterCompression:      outCompression.Value(),
		WriterCompressionLevel: level,
		ReaderCompression:      inCompression.Value(),
		TempDir:                tempDir,
		Logger:                 logger,
	}
	if _, err := cfg.Convert(in, dest); err != nil {
		logger.Errorf("Failed to convert %q into %q: %s", src, dest, err)
		return 1
	}
	return 0
}

// openSource opens the recording named by src, terminating through g on
// failure.
//
// Standard input is read through a duplicate of its descriptor, so closing
// the returned stream leaves os.Stdin intact.
func openSource(g *guard.Guard, src string) io.ReadCloser {
	if src != stdinName {
		return g.MustOpen(src, "rb")
	}
	fd := g.MustDup(int(os.Stdin.Fd()))
	return g.MustFDOpen(fd, "rb")
}
