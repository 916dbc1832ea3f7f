// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package logging defines the logger interface used by library packages.
package logging

// L accepts logging data.
//
// L is shaped so that zap's *zap.SugaredLogger satisfies it directly, but any
// leveled logger with the same method set will do.
type L interface {
	// Error emits an error-level log.
	Error(args ...interface{})
	// Warn emits a warning-level log.
	Warn(args ...interface{})
	// Info emits an info-level log.
	Info(args ...interface{})
	// Debug emits a debug-level log.
	Debug(args ...interface{})

	// Errorf emits a formatted error-level log.
	Errorf(fmt string, args ...interface{})
	// Warnf emits a formatted warning-level log.
	Warnf(fmt string, args ...interface{})
	// Infof emits a formatted info-level log.
	Infof(fmt string, args ...interface{})
	// Debugf emits a formatted debug-level log.
	Debugf(fmt string, args ...interface{})

	// Warnw emits a warning-level log with structured key/value pairs.
	Warnw(msg string, keysAndValues ...interface{})
	// Infow emits an info-level log with structured key/value pairs.
	Infow(msg string, keysAndValues ...interface{})
	// Debugw emits a debug-level log with structured key/value pairs.
	Debugw(msg string, keysAndValues ...interface{})
}

// Nop is a L instance that does nothing.
var Nop L = nopLogger{}

// Must ensures that a valid L is available. If l is not nil, it will be
// returned; otherwise, Must will return Nop.
func Must(l L) L {
	if l != nil {
		return l
	}
	return Nop
}

type nopLogger struct{}

func (nopLogger) Error(args ...interface{}) {}
func (nopLogger) Warn(args ...interface{})  {}
func (nopLogger) Info(args ...interface{})  {}
func (nopLogger) Debug(args ...interface{}) {}

func (nopLogger) Errorf(fmt string, args ...interface{}) {}
func (nopLogger) Warnf(fmt string, args ...interface{})  {}
func (nopLogger) Infof(fmt string, args ...interface{})  {}
func (nopLogger) Debugf(fmt string, args ...interface{}) {}

func (nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
