package errors

import (
	stdErrors "errors"

	"github.com/pkg/errors"
)

// ErrorTracer is an error carrying the stack of the point where it was first
// traced. The message is the message of the traced error.
type ErrorTracer struct {
	Message string
	Err     error
}

// StackTracer is implemented by errors that recorded a stack.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// TracerFromError traces err, reusing a stack already present in its chain.
func TracerFromError(err error) *ErrorTracer {
	var traced StackTracer
	if !stdErrors.As(err, &traced) {
		err = errors.WithStack(err)
	}
	return &ErrorTracer{Message: err.Error(), Err: err}
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the innermost recorded stack, or nil.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	var traced StackTracer
	if stdErrors.As(e.Err, &traced) {
		return traced.StackTrace()
	}
	return nil
}
