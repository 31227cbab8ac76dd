// Package logging constructs the slog loggers used across the daemon and CLI.
//
// It supports console and JSON formats, multi-destination output (stdout plus
// a log file inside the configured log directory), and component-scoped child
// loggers so every subsystem tags its records consistently.
package logging
