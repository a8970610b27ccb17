package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSessionID is returned when create_session answers 2xx
	// without a usable session_id.
	ErrMissingSessionID = errors.New("response did not contain a session_id")

	// ErrNoSession is returned by SendQuery when called without a session id.
	ErrNoSession = errors.New("no session id")
)

// SessionCreationError reports a failed create_session call. StatusCode is
// zero when the request never got an HTTP response.
type SessionCreationError struct {
	StatusCode int
	Err        error
}

func (e *SessionCreationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("create session: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("create session: %v", e.Err)
}

func (e *SessionCreationError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed query call. StatusCode is zero when the
// request never got an HTTP response.
type QueryError struct {
	StatusCode int
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
