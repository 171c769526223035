// Package errors provides error annotation with slog attributes and source
// locations. It re-exports the stdlib helpers so callers only need one
// errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// annotatedError carries a message, structured annotations, and the source
// location of the Wrap call alongside the wrapped error.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// NewSentinel creates an error value meant to be used as a sentinel for
// errors.Is comparisons.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a message and optional slog attributes, recording
// the caller's source location for logging with SlogError.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		err:    err,
		attrs:  attrs,
		source: caller(2), //nolint:mnd // skip runtime.Caller and Wrap itself.
	}
}

// Errorf formats an error in the manner of fmt.Errorf while recording the
// caller's source location.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &annotatedError{
		msg:    "",
		err:    err,
		attrs:  nil,
		source: caller(2), //nolint:mnd // skip runtime.Caller and Errorf itself.
	}
}

func (e *annotatedError) Error() string {
	if e.msg == "" {
		return e.err.Error()
	}
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError renders err as a structured slog attribute including the
// annotations and source trace collected by Wrap.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []slog.Attr
		sources     []string
	)
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		var ae *annotatedError
		if errors.As(cur, &ae) {
			annotations = append(annotations, ae.attrs...)
			if ae.source != "" {
				sources = append(sources, ae.source)
			}
			cur = ae
		}
	}

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		groupArgs := make([]any, 0, len(annotations))
		for _, a := range annotations {
			groupArgs = append(groupArgs, a)
		}
		attrs = append(attrs, slog.Group("annotations", groupArgs...))
	}
	if len(sources) > 0 {
		attrs = append(attrs, slog.String("source", strings.Join(sources, " <- ")))
	}
	return slog.Group("error", attrs...)
}

// caller returns "file.go:line" for the frame skip levels up the stack.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
