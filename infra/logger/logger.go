package logger

import corelogger "github.com/kilianp07/orderbot/core/logger"

// DefaultComponent tags loggers created without a component name.
const DefaultComponent = "orderbot"

// Logger is the core logging interface, re-exported so callers wiring the
// service only import this package.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a zerolog-backed Logger tagged with component. APP_ENV=dev
// selects the console writer, and output follows the last Setup call.
func New(component string) Logger {
	if component == "" {
		component = DefaultComponent
	}
	return NewZerologLogger(component)
}
