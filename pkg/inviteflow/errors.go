package inviteflow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
)

// Common errors
var (
	// ErrAcceptInFlight is returned when an accept call is issued while a
	// previous one is still pending. The accept operation is at-most-once-
	// effective per token upstream, so the coordinator refuses the second call.
	ErrAcceptInFlight = errors.New("accept request already in flight")

	// ErrCoordinatorClosed is returned when an operation is invoked after Close
	ErrCoordinatorClosed = errors.New("coordinator is closed")

	// ErrWrongState is returned when an operation is not valid in the current state
	ErrWrongState = errors.New("operation not valid in current state")

	// ErrNoPendingInvite is returned by the registration sub-flow when no
	// invite token was stored before the navigation
	ErrNoPendingInvite = errors.New("invitation token not found, please use the original invitation link")
)

// ValidationError is a local input rejection. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AcceptError is a failed accept request. The flow is recoverable: the state
// returns to its pre-accept value and the caller may retry.
type AcceptError struct {
	Message    string
	StatusCode int
}

func (e *AcceptError) Error() string {
	return e.Message
}

// upstreamMessage extracts the server-reported message from an API error,
// falling back to a generic one for transport failures.
func upstreamMessage(err error, fallback string) string {
	var apiErr *idmclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func upstreamStatus(err error) int {
	var apiErr *idmclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func acceptErrorFrom(err error) *AcceptError {
	return &AcceptError{
		Message:    upstreamMessage(err, "Failed to accept invitation"),
		StatusCode: upstreamStatus(err),
	}
}
