// Package logging assembles structured slog loggers and formatting helpers
// used across gutencorpus commands.
//
// It owns the console and JSON handlers, maps configured level names, and
// exposes helpers that tag log lines with a component name and the current
// ingestion run ID. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
