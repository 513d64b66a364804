package media

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports a backend that was never resolved or failed its startup check.
var ErrUnavailable = errors.New("backend unavailable")

// BackendError is returned by every call into an external backend.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Op: op, Err: err}
}
