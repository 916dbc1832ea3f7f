// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ttyrec

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	readerFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ttyrec_reader_frames",
		Help: "Count of frames read from recordings.",
	})

	readerPayloadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ttyrec_reader_payload_bytes",
		Help: "Count of payload bytes read from recordings.",
	})

	readerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttyrec_reader_errors",
		Help: "Count of errors encountered while reading recordings.",
	}, []string{"type"})

	writerFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ttyrec_writer_frames",
		Help: "Count of frames written to recordings.",
	})

	writerPayloadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ttyrec_writer_payload_bytes",
		Help: "Count of payload bytes written to recordings.",
	})

	writerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttyrec_writer_errors",
		Help: "Count of errors encountered while writing recordings.",
	}, []string{"type"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		// Reader
		readerFrames,
		readerPayloadBytes,
		readerErrors,

		// Writer
		writerFrames,
		writerPayloadBytes,
		writerErrors,
	)
}
