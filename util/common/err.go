// Package common holds small helpers shared across the server.
package common

import (
	"errors"
	"fmt"

	"kaban/logger"
)

// NewErrorf builds an error from a format string.
func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

// Recover logs a recovered panic. Use as a deferred guard in goroutines and
// scheduled jobs.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
