package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error with the supplied message and the caller stack.
func New(message string) error {
	return pkgerrors.New(message)
}

// Errorf formats according to a format specifier and records the caller stack.
func Errorf(format string, args ...interface{}) error {
	return pkgerrors.Errorf(format, args...)
}

// Wrap annotates err with a message and the caller stack. Wrap returns nil if err is nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf is Wrap with a format specifier.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack annotates err with the caller stack. WithStack returns nil if err is nil.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// WithMessage annotates err with a message but no stack.
func WithMessage(err error, message string) error {
	return pkgerrors.WithMessage(err, message)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// ErrorfAndReport builds a new error and sends it to every registered reporter.
func ErrorfAndReport(format string, args ...interface{}) error {
	err := pkgerrors.Errorf(format, args...)
	report(err)
	return err
}

// WrapAndReport wraps err and reports it. Nil errors are neither wrapped nor reported.
func WrapAndReport(err error, message string) error {
	if err == nil {
		return nil
	}
	err = pkgerrors.Wrap(err, message)
	report(err)
	return err
}

func WrapfAndReport(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	err = pkgerrors.Wrapf(err, format, args...)
	report(err)
	return err
}

func WithStackAndReport(err error) error {
	if err == nil {
		return nil
	}
	err = pkgerrors.WithStack(err)
	report(err)
	return err
}

const maxStackDepth = 32

type stack []uintptr

// callers skips runtime.Callers, itself and the reporter calling it.
func callers() *stack {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st stack = pcs[0:n]
	return &st
}

func (s *stack) fullStack() []string {
	var lines []string
	frames := runtime.CallersFrames(*s)
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return lines
}

// reportSite picks the frame of the code that asked for the report.
func reportSite(lines []string) string {
	if len(lines) > 2 {
		return lines[2]
	}
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
