package idmclient

import "fmt"

// APIError is a non-success response from the Identity & Workspace API.
// Message is the upstream error detail when the body carried one, else a
// generic fallback supplied by the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity api error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the upstream rejected the request with 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized reports whether the upstream rejected the ambient credential.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}
