package cmd

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNoReply          = errors.New("no reply from relay")
)

// CommandError ties a failure to the step that produced it.
type CommandError struct {
	Op      string
	Err     error
	Details string
}

func (e *CommandError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *CommandError {
	return &CommandError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *CommandError {
	return &CommandError{Op: op, Err: err, Details: details}
}
