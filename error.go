package codablejson

import (
	"errors"
)

// Error is the decoded form of an encoded error. Any Go error encodes
// through the Error descriptor; decoding always yields *Error.
type Error struct {
	Cause      any
	Properties map[string]any
	Name       string
	Message    string
	Stack      string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Name != "" && e.Name != "Error" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the cause when it is an error.
func (e *Error) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// errorFields extracts the encodable parts of any error.
func errorFields(err error) *Error {
	if ce, ok := err.(*Error); ok {
		return ce
	}
	f := &Error{Name: "Error", Message: err.Error()}
	if cause := errors.Unwrap(err); cause != nil {
		f.Cause = cause
	}
	return f
}
