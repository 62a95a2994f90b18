// Package errors provides utilities for consistent error handling across the application.
//
// This package offers functions for wrapping errors with context, combining multiple errors,
// and finding the first non-nil error in a sequence.
//
// Example usage:
//
//	// Wrap an error with context
//	if err := operation(); err != nil {
//	    return errors.WrapError(err, "failed to perform operation")
//	}
//
//	// Combine multiple errors
//	errs := []error{err1, err2, err3}
//	if err := errors.CombineErrors(errs); err != nil {
//	    log.Printf("Multiple errors occurred: %v", err)
//	}
//
//	// Get first non-nil error
//	if err := errors.FirstError(err1, err2, err3); err != nil {
//	    return err
//	}
package errors

import (
	"errors"
	"fmt"
)

// WrapError wraps an error with additional context
func WrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted context
func WrapErrorf(err error, format string, args ...interface{}) error {
	return WrapError(err, format, args...)
}

// NewError creates a new error with formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Kind classifies which stage of the pipeline an error originated in
// (spec.md §7's error taxonomy): Input, Collection, RenamePlanning,
// Execution, Editor, Dump. It travels with the error itself so the CLI's
// top-level handler can report it, and decide an exit code, without
// string-matching messages.
type Kind string

const (
	KindInput          Kind = "input"
	KindCollection     Kind = "collection"
	KindRenamePlanning Kind = "rename-planning"
	KindExecution      Kind = "execution"
	KindEditor         Kind = "editor"
	KindDump           Kind = "dump"
)

// kindError tags err with kind without altering err's own wrap chain,
// so KindOf can recover it with errors.As from any depth.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return string(e.kind) + ": " + e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// TagKind attaches kind to err, for errors a lower-level package (e.g.
// pkg/fileutil) already formatted, without reformatting the message.
func TagKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// WrapKind wraps err with both a formatted message and a taxonomy kind.
func WrapKind(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return TagKind(kind, WrapError(err, format, args...))
}

// NewKind creates a new taxonomy-tagged error with no underlying cause.
func NewKind(kind Kind, format string, args ...interface{}) error {
	return TagKind(kind, NewError(format, args...))
}

// KindOf reports the taxonomy kind attached to err, if any, by walking
// its wrap chain.
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return "", false
}

// IsNil checks if an error is nil
func IsNil(err error) bool {
	return err == nil
}

// IsNotNil checks if an error is not nil
func IsNotNil(err error) bool {
	return err != nil
}

// FirstError returns the first non-nil error from a list
func FirstError(errors ...error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// CombineErrors combines multiple errors into a single error
func CombineErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}

	var nonNilErrors []error
	for _, err := range errors {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}

	if len(nonNilErrors) == 0 {
		return nil
	}

	if len(nonNilErrors) == 1 {
		return nonNilErrors[0]
	}

	return fmt.Errorf("multiple errors occurred: %v", nonNilErrors)
}
