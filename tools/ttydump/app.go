// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package ttydump defines the logic for the "ttyrec-dump" tool.
//
// ttyrec-dump prints one line per frame of a recording: its index, timestamp,
// delay since the previous frame, and payload length. It is useful for
// inspecting recordings without replaying them.
package ttydump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/gottyrec/guard"
	"github.com/danjacques/gottyrec/support/fmtutil"
	"github.com/danjacques/gottyrec/support/logging"
	"github.com/danjacques/gottyrec/ttyrec"

	"github.com/spf13/pflag"
)

// Options control how a recording is dumped.
type Options struct {
	// Payload, if true, prints each frame's payload as a quoted string.
	Payload bool
	// Hex, if true, prints a hex dump of each frame's payload.
	Hex bool
	// Raw, if true, prints each frame's header as it is laid out on disk.
	Raw bool
	// UTC, if true, prints timestamps in UTC rather than local time.
	UTC bool
}

// Main is the main entry point.
func Main() { os.Exit(run(os.Args)) }

func run(args []string) int {
	var (
		compression = ttyrec.CompressionFlag(ttyrec.CompressionAuto)
		opts        Options
		output      string
		verbose     bool
	)

	progname := filepath.Base(args[0])
	fs := pflag.NewFlagSet(progname, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FILE\n", progname)
		fs.PrintDefaults()
	}
	fs.Var(&compression, "compression",
		"Compression of the recording. Options are: "+ttyrec.CompressionFlagValues())
	fs.BoolVarP(&opts.Payload, "payload", "p", false, "Print each frame's payload.")
	fs.BoolVarP(&opts.Hex, "hex", "x", false, "Print a hex dump of each frame's payload.")
	fs.BoolVar(&opts.Raw, "raw", false, "Print each frame's on-disk header bytes.")
	fs.BoolVar(&opts.UTC, "utc", false, "Print timestamps in UTC.")
	fs.StringVarP(&output, "output", "o", "", "Write to this file instead of standard output.")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger, err := logging.NewConsole(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: creating logger: %s\n", progname, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	g := guard.Guard{Name: progname}
	in := g.MustOpen(fs.Arg(0), "rb")
	defer in.Close()

	if output != "" {
		// Point standard output at the file, so everything written to it lands
		// there.
		out := g.MustOpen(output, "w")
		g.MustDup2(out.Fd(), int(os.Stdout.Fd()))
		_ = out.Close()
	}

	w := bufio.NewWriter(os.Stdout)
	cfg := ttyrec.Config{
		ReaderCompression: compression.Value(),
		Logger:            logger,
	}
	if err := Dump(&cfg, in, w, &opts); err != nil {
		_ = w.Flush()
		logger.Errorf("Failed to dump %q: %s", fs.Arg(0), err)
		return 1
	}
	if err := w.Flush(); err != nil {
		logger.Errorf("Failed to write output: %s", err)
		return 1
	}
	return 0
}

// Dump writes a line describing each frame in the recording r to w.
func Dump(cfg *ttyrec.Config, r io.Reader, w io.Writer, opts *Options) error {
	rd, err := cfg.NewReader(r)
	if err != nil {
		return err
	}

	var (
		prev time.Time
		raw  [ttyrec.HeaderSize]byte
	)
	for {
		f, err := rd.ReadFrame()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}

		t := f.Time()
		var delay time.Duration
		if !prev.IsZero() {
			delay = t.Sub(prev)
		}
		prev = t

		if opts.UTC {
			t = t.UTC()
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t+%s\t%d\n",
			rd.Frames()-1, t.Format("2006-01-02T15:04:05.000000Z07:00"), delay, f.Len); err != nil {
			return err
		}
		if opts.Raw {
			if err := cfg.Codec.Encode(raw[:], &f.Header); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "\t[%s]\n", fmtutil.Octets(raw[:])); err != nil {
				return err
			}
		}
		if opts.Payload {
			if _, err := fmt.Fprintf(w, "\t%q\n", f.Payload); err != nil {
				return err
			}
		}
		if opts.Hex && len(f.Payload) > 0 {
			if _, err := fmt.Fprintf(w, "%s\n", fmtutil.Hex(f.Payload)); err != nil {
				return err
			}
		}
	}
}
