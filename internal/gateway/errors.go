package gateway

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Every gateway error unwraps to exactly one of these.
var (
	// ErrNetwork is a transport-level failure: no response was received.
	ErrNetwork = errors.New("network failure")
	// ErrRequest is a non-2xx response with a body.
	ErrRequest = errors.New("request failed")
	// ErrNotAuthorized is session-fatal: the caller must log out.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrValidation is a locally detected invariant violation; nothing
	// was sent to the server.
	ErrValidation = errors.New("validation failed")
)

// CallError carries the context of a failed exchange.
type CallError struct {
	Endpoint string
	Status   int
	Body     []byte
	detail   string
	cause    error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Endpoint, e.cause)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return msg
}

func (e *CallError) Unwrap() error { return e.cause }

// NotAuthorized reports whether err is the session-fatal 401/403 signal.
func NotAuthorized(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}

// IsNetwork reports whether err was a transport failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
