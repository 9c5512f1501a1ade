package logging

import (
	"log"
	"os"
)

// Logger wraps the standard logger with a debug gate
type Logger struct {
	l     *log.Logger
	debug bool
}

// New creates a logger writing to stderr; debug messages are dropped
// unless enabled
func New(debug bool) *Logger {
	return &Logger{
		l:     log.New(os.Stderr, "", log.LstdFlags),
		debug: debug,
	}
}

// Debugf logs a debug message when debug output is enabled
func (lg *Logger) Debugf(format string, v ...any) {
	if lg.debug {
		lg.l.Printf("DEBUG: "+format, v...)
	}
}

// Infof logs an informational message
func (lg *Logger) Infof(format string, v ...any) {
	lg.l.Printf(format, v...)
}

// Errorf logs an error message
func (lg *Logger) Errorf(format string, v ...any) {
	lg.l.Printf("ERROR: "+format, v...)
}
