package inference

import (
	"errors"
	"strings"
)

// Error wraps any transport, timeout or backend failure of a chat call.
type Error struct {
	Backend string
	Model   string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("inference")
	if e.Backend != "" {
		b.WriteString(" (" + e.Backend + ")")
	}
	if e.Model != "" {
		b.WriteString(" model " + e.Model)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(backend, model string, err error) error {
	if err == nil {
		return nil
	}
	var ie *Error
	if errors.As(err, &ie) {
		return err
	}
	return &Error{Backend: backend, Model: model, Err: err}
}

// IsInferenceError reports whether err came from a chat call.
func IsInferenceError(err error) bool {
	var ie *Error
	return errors.As(err, &ie)
}

// ShapeError signals a backend response that does not decode into the
// expected structure.
type ShapeError struct{ msg string }

func (e ShapeError) Error() string { return "unexpected response shape: " + e.msg }

// IsShapeError reports whether err indicates a malformed backend payload.
func IsShapeError(err error) bool {
	var se ShapeError
	return errors.As(err, &se)
}

// dependencyUnavailableError signals a backend compiled out of this binary.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}
