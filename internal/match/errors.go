package match

import "fmt"

// ErrorKind classifies pipeline failures. Recoverable conditions (a single
// routing call failing, one candidate's extraction missing) are absorbed
// inside their stage and never become an Error; only these kinds surface.
type ErrorKind string

const (
	// KindValidation: malformed or out-of-range input; the pipeline never starts.
	KindValidation ErrorKind = "validation"
	// KindFault: an internal invariant violation; the request is aborted.
	KindFault ErrorKind = "fault"
)

// Error is a typed pipeline failure carrying its kind and the stage that
// raised it.
type Error struct {
	Kind  ErrorKind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(stage Stage, err error) *Error {
	return &Error{Kind: KindValidation, Stage: stage, Err: err}
}

func faultError(stage Stage, err error) *Error {
	return &Error{Kind: KindFault, Stage: stage, Err: err}
}
