package errors

import stdErrors "errors"

// New returns a traced ErrorDetails with the given code.
func New(code ErrorCode, message, field string) *ErrorTracer {
	return TracerFromError(NewErrorDetails(message, string(code), field))
}

// Wrap attaches a code to err while keeping err in the chain.
func Wrap(code ErrorCode, err error, field string) *ErrorTracer {
	details := NewErrorDetails(err.Error(), string(code), field)
	details.Cause = err
	return TracerFromError(details)
}

// CodeOf returns the code of the first ErrorDetails found in the chain of err.
// It returns an empty code when err carries none.
func CodeOf(err error) ErrorCode {
	var details *ErrorDetails
	if stdErrors.As(err, &details) {
		return ErrorCode(details.Code)
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// DetailsOf returns the first ErrorDetails found in the chain of err.
func DetailsOf(err error) (*ErrorDetails, bool) {
	var details *ErrorDetails
	if stdErrors.As(err, &details) {
		return details, true
	}
	return nil, false
}
