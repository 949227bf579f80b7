// Package errors annotates errors with a message, structured log attributes and the source location
// where they were wrapped. It re-exports the standard library helpers so callers need a single import.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Re-exported from the standard library.
var (
	New    = stderrors.New
	Is     = stderrors.Is
	As     = stderrors.As
	Join   = stderrors.Join
	Unwrap = stderrors.Unwrap
)

// sentinelError is comparable by pointer identity and carries no source location.
type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// NewSentinel creates an error meant to be declared as a package level variable and matched with [Is].
func NewSentinel(msg string) error {
	return &sentinelError{msg: msg}
}

type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Wrap annotates err with msg and attrs. The caller's file and line are recorded for [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		err:    err,
		attrs:  attrs,
		source: callerSource(2), //nolint:mnd // skip callerSource and Wrap.
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at the panicking line.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", excp),
		err:    nil,
		attrs:  nil,
		source: panicSource(),
	}
}

// SlogError renders err as an "error" group containing the message, the innermost wrap location and
// every annotation found along the unwrap chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	var (
		annotations []any
		source      string
	)
	for current := err; current != nil; current = stderrors.Unwrap(current) {
		var annotated *annotatedError
		if ae, ok := current.(*annotatedError); ok {
			annotated = ae
		}
		if annotated == nil {
			continue
		}
		for _, attr := range annotated.attrs {
			annotations = append(annotations, attr)
		}
		source = annotated.source
	}

	groupAttrs := []any{slog.String("message", err.Error())}
	if source != "" {
		groupAttrs = append(groupAttrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		groupAttrs = append(groupAttrs, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", groupAttrs...)
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// panicSource finds the first frame below runtime.gopanic, which is where panic was called.
func panicSource() string {
	pcs := make([]uintptr, 32) //nolint:mnd // deep enough for a deferred recover.
	n := runtime.Callers(3, pcs) //nolint:mnd // skip Callers, panicSource and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])

	var first string
	afterPanic := false
	for {
		frame, more := frames.Next()
		location := fmt.Sprintf("%s:%d", frame.File, frame.Line)
		if first == "" {
			first = location
		}
		if afterPanic {
			return location
		}
		if strings.HasSuffix(frame.Function, "runtime.gopanic") {
			afterPanic = true
		}
		if !more {
			break
		}
	}
	return first
}
