// Package sqlite contains the SQLite repository for planning cycle
// records.
//
// All cycle read/write SQL lives here rather than in internal/planning,
// which keeps the planning loop free of storage concerns and lets tests
// swap in an in-memory recorder.
package sqlite
