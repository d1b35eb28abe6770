package clierr

import (
	"errors"
	"fmt"
)

// Exit codes of the CLI. Errors without a code exit with CodeRuntime, so a
// crash never looks like a findings report.
const (
	CodeFindings = 1
	CodeUsage    = 2
	CodeRuntime  = 3
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to cause. A nil cause gives a plain New.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Usage marks err as a usage or configuration problem.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{code: CodeUsage, msg: "invalid usage", cause: err}
}

// ExitCodeOf extracts an exit code from any error, defaulting to CodeRuntime.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return CodeRuntime
}

func normalize(code int) int {
	if code <= 0 {
		return CodeRuntime
	}
	return code
}
