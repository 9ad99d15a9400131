package upstream

import (
	"errors"
	"fmt"
)

// ErrAlreadyMember reports a membership add rejected by the API because
// the competitor is already in the season.
var ErrAlreadyMember = errors.New("competitor already in season")

// APIError is an envelope-level failure: the API answered, but with
// success=false. Message is the upstream text, suitable for user display.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: api rejected request (status %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// TransportError is a network or protocol failure: the call never produced
// a usable envelope. Local snapshots stay untouched when one is returned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAPIError reports whether err is an envelope-level rejection and
// returns it when so.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
