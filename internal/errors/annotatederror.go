// Package errors provides error wrapping with slog annotations and source locations.
//
// It is a drop-in replacement for the standard library errors package. Errors created
// with [Wrap] remember the call site and any [slog.Attr] annotations so that they can
// be logged with [SlogError] without losing context along the way.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// AnnotatedError is an error with a message, optional wrapped error,
// slog annotations, and the source location where it was created.
type AnnotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	source      string
}

// Error implements the error interface.
func (e *AnnotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap returns the wrapped error so that [Is] and [As] can traverse the chain.
func (e *AnnotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a sentinel error meant for package-level error variables.
//
// Sentinels record no source location since they are created at init time.
func NewSentinel(msg string) *AnnotatedError {
	return &AnnotatedError{
		msg:         msg,
		err:         nil,
		annotations: nil,
		source:      "",
	}
}

// Wrap annotates err with a message and optional slog attributes.
//
// The call site of Wrap is recorded so that SlogError can point to where
// the error gained its context.
func Wrap(err error, msg string, annotations ...slog.Attr) *AnnotatedError {
	return &AnnotatedError{
		msg:         msg,
		err:         err,
		annotations: annotations,
		source:      caller(2), //nolint:mnd // skip runtime.Caller and Wrap itself.
	}
}

// DecoratePanic converts a recovered panic value into an annotated error.
//
// The recorded source points at the panic site rather than the recover site:
// the stack is walked past runtime.gopanic to the first non-runtime frame.
// Call it from the deferred function that recovered the panic.
func DecoratePanic(excp any) error {
	const maxStackDepth = 32
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])

	var (
		source    string
		pastPanic bool
	)
	for {
		frame, more := frames.Next()
		if pastPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			source = shortLocation(frame.File, frame.Line)
			break
		}
		if frame.Function == "runtime.gopanic" {
			pastPanic = true
		}
		if !more {
			break
		}
	}

	return &AnnotatedError{
		msg:         fmt.Sprintf("panic: %v", excp),
		err:         nil,
		annotations: nil,
		source:      source,
	}
}

// caller resolves the file:line of the caller skip frames up the stack.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return shortLocation(file, line)
}

// shortLocation trims the path down to the file name to keep log lines short.
func shortLocation(file string, line int) string {
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	return fmt.Sprintf("%s:%d", short, line)
}

// SlogError renders err as a slog group attribute with the error message,
// the annotations gathered from the whole error chain, and the source
// location of the outermost annotated error.
//
// It tolerates nil errors and plain stdlib errors.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []slog.Attr
		source      string
	)
	collectAnnotations(err, &annotations, &source)

	attrs := []any{slog.String("message", err.Error())}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		groupArgs := make([]any, 0, len(annotations))
		for _, annotation := range annotations {
			groupArgs = append(groupArgs, annotation)
		}
		attrs = append(attrs, slog.Group("annotations", groupArgs...))
	}
	return slog.Group("error", attrs...)
}

// collectAnnotations walks the error chain including errors.Join trees and
// gathers annotations. The first source found wins since it is the outermost.
func collectAnnotations(err error, annotations *[]slog.Attr, source *string) {
	if err == nil {
		return
	}

	var annotated *AnnotatedError
	if errors.As(err, &annotated) {
		// As finds the outermost annotated error in the chain.
		*annotations = append(*annotations, annotated.annotations...)
		if *source == "" && annotated.source != "" {
			*source = annotated.source
		}
		collectAnnotations(annotated.err, annotations, source)
		return
	}

	// Handle errors.Join and fmt.Errorf multi-wrapping.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			collectAnnotations(inner, annotations, source)
		}
	}
}

// New mirrors the standard library errors.New.
func New(msg string) error {
	return errors.New(msg)
}

// Is mirrors the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As mirrors the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap mirrors the standard library errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join mirrors the standard library errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
