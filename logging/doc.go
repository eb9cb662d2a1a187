// Package logging defines the Logger interface used across tripflow plus
// slog-backed and no-op implementations.
package logging
