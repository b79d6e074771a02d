package api

import (
	"errors"
	"fmt"
)

// AuthError indicates that authentication has failed or expired.
// It is returned when the backend responds with HTTP 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError carries a backend-reported failure: a non-2xx status with an
// optional error message from the response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.StatusCode)
}
