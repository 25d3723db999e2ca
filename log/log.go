// Package log provides loggers for musik components.
package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "MUSIK_DEBUG"

// GetLogger returns a new logger instance. Debug level is enabled when
// MUSIK_DEBUG is set to a true value.
func GetLogger() *logrus.Logger {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
	return New(debug)
}

// New returns a logger writing to stderr with text formatting.
func New(debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
