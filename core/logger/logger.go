package logger

// Logger exposes logging methods for common severity levels. Adapters
// live under infra/logger so core packages stay free of logging
// library imports.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
