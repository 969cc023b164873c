package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/compose"
)

const (
	exitOK             = 0
	exitBaseNotFound   = 1
	exitUnreadable     = 2
	exitInvalidRequest = 3
	exitFailure        = 4
)

// usageError marks bad flags or arguments. They exit like an invalid request.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return exitInvalidRequest
	}
	switch compose.Classify(err) {
	case compose.KindOK:
		return exitOK
	case compose.KindBaseNotFound:
		return exitBaseNotFound
	case compose.KindUnreadable:
		return exitUnreadable
	case compose.KindInvalidRequest:
		return exitInvalidRequest
	default:
		return exitFailure
	}
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
