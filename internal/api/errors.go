// Package api provides error types for catalog API responses.
package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse indicates the catalog returned no body where a payload
// was expected.
var ErrEmptyResponse = errors.New("empty response from catalog")

// RequestError indicates the request itself failed: a transport error or a
// non-200 status. StatusCode is 0 for transport failures.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RemoteError indicates the catalog answered with an errors array. Its
// presence is treated as failure even if a data payload was also present.
type RemoteError struct {
	Messages []string
}

func (e *RemoteError) Error() string {
	return "catalog returned errors: " + strings.Join(e.Messages, "; ")
}
