package main

import (
	"os"

	"github.com/signadot/tony-format/yq/debug"

	"github.com/charmbracelet/log"
)

// newLogger returns the logger for a run, logging at debug level when
// verbose.
func newLogger(name string, verbose bool) *log.Logger {
	if !verbose {
		return debug.Logger()
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: name,
		Level:  log.DebugLevel,
	})
}
