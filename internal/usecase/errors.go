package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrInvalidInput rejects bad local input before anything reaches the network.
	ErrInvalidInput = crerr.New("invalid input")
	// ErrPrecondition is returned when an action needs a saved profile and none exists.
	ErrPrecondition = crerr.New("precondition failed")
	// ErrNetwork covers transport failures and non-success HTTP statuses.
	ErrNetwork = crerr.New("network error")
	// ErrProtocol is a response that could not be parsed as the expected structure.
	ErrProtocol = crerr.New("protocol error")
	// ErrServer is a parseable response that explicitly reports failure.
	ErrServer = crerr.New("server error")
	// ErrWriteInFlight rejects an action while an attendance write is pending.
	ErrWriteInFlight = crerr.New("attendance update already in progress")
	// ErrNotFound is an unknown or no longer upcoming session id.
	ErrNotFound = crerr.New("resource not found")
)

// ProtocolError keeps the start of the unparseable body for diagnostics.
type ProtocolError struct {
	Action  string
	Snippet string
	Cause   error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s response was not JSON. First 200 chars:\n%s", e.Action, e.Snippet)
}

func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// ServerError carries the remote message verbatim so it can be shown to the user.
type ServerError struct {
	Action  string
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// NetworkError is a transport failure or a non-success HTTP status from the
// remote sheet. StatusCode is zero when no response arrived.
type NetworkError struct {
	Action     string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Action, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Transient reports whether the failure is worth counting against a circuit
// breaker: no response at all, throttling, or a server-side error.
func (e *NetworkError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
