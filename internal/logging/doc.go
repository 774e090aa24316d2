// Package logging assembles the structured slog loggers used across stravagpx.
//
// It owns the console and JSON handlers, level parsing, and output plumbing,
// plus small attribute helpers so packages tag decisions and warnings with
// the same field names. The console handler colours level labels only when
// writing to a terminal. A no-op logger is provided for tests and for wiring
// code that cannot fail.
package logging
