package client

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the stored token.
// The token store has already been cleared when it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotLoggedIn is returned by Logout when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
