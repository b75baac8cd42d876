package apiclient

import "fmt"

// APIError represents an RFC 7807 problem-details error response from the
// engine's API.
type APIError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// IsAuthError returns true if this is an authentication/authorization error.
func (e *APIError) IsAuthError() bool {
	return e.Status == 401 || e.Status == 403
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.Status == 404
}

// IsConflict returns true if this is a conflict error.
func (e *APIError) IsConflict() bool {
	return e.Status == 409
}

// IsValidationError returns true if this is a bad-request/validation error.
func (e *APIError) IsValidationError() bool {
	return e.Status == 400
}
