// Package monitoring carries the process-wide diagnostic logger the
// planning pipeline reports through.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
// Replace it through SetLogger to redirect or mute pipeline diagnostics.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op, so
// callers never have to nil-check before logging.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
