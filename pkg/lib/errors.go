package lib

import (
	"errors"
	"fmt"
)

// Category is the machine-readable failure class attached to every error the
// engine reports.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryConnection Category = "connection"
	CategoryProcess    Category = "process"
	CategoryBinary     Category = "binary"
	CategorySystem     Category = "system"
)

var (
	ErrAlreadyRunning = errors.New("mirroring session already running")
	ErrStartupTimeout = errors.New("process produced no output before the startup timeout")
	ErrPrematureExit  = errors.New("process exited before producing output")
	ErrNotFound       = errors.New("binary not found")
	ErrCleanedUp      = errors.New("engine already cleaned up")
)

// Error carries a category, the failing operation, a human-readable message and
// the original technical cause.
type Error struct {
	Category Category
	Op       string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a categorized error.
func NewError(category Category, op, msg string, err error) *Error {
	return &Error{Category: category, Op: op, Msg: msg, Err: err}
}

// CategoryOf returns the category of the first *Error in err's chain, or
// CategorySystem when none is present.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategorySystem
}

// Message returns the human-readable part of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
