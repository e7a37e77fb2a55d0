package core

import "errors"

// Failure classes for room operations. Handlers match with errors.Is;
// the wire message comes from Error() of the wrapping opError.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrPreconditionFailed = errors.New("precondition failed")
)

type opError struct {
	class error
	msg   string
}

func (e *opError) Error() string { return e.msg }
func (e *opError) Unwrap() error { return e.class }

// Fail wraps a human-readable message in one of the failure classes.
func Fail(class error, msg string) error {
	return &opError{class: class, msg: msg}
}
