package catalog

import (
	"errors"
	"fmt"
)

// Failure classes surfaced by ListActivePlans. Their messages are safe to
// return to clients; the wrapped cause is for logs only.
var (
	ErrUpstreamStorage = errors.New("plan store unavailable")
	ErrDataIntegrity   = errors.New("plan data is malformed")
)

// IntegrityError names the plan row whose features could not be decoded.
type IntegrityError struct {
	PlanID string
	Err    error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("plan %q: malformed features: %v", e.PlanID, e.Err)
}

func (e *IntegrityError) Unwrap() []error { return []error{ErrDataIntegrity, e.Err} }

// PublicMessage is the text put in the {"error": ...} body for err.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrDataIntegrity):
		return ErrDataIntegrity.Error()
	case errors.Is(err, ErrUpstreamStorage):
		return ErrUpstreamStorage.Error()
	default:
		return "internal error"
	}
}

// Outcome is the metrics label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDataIntegrity):
		return "integrity_error"
	default:
		return "storage_error"
	}
}
