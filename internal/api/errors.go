package api

import (
	"errors"
	"fmt"
)

// Error is a server-reported application error: a non-2xx response whose
// body carried an "error" field. The server's message is preserved verbatim
// so the user sees what the server said, not a generic substitute.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (status %d)", e.Status)
}

// IsServerError reports whether err is a server-reported application error.
func IsServerError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
