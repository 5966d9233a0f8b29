package monday

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedResponse marks a response that lacks the keys the client reads.
var ErrMalformedResponse = errors.New("malformed board response")

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("query failed to run with a %d error: %s", e.StatusCode, e.Body)
}

// ResponseError describes why a 200 response could not be used.
type ResponseError struct {
	Reason string
	// Errors holds GraphQL error messages reported alongside the response.
	Errors []string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrMalformedResponse.Error(), e.Reason)
	if len(e.Errors) > 0 {
		msg += " (" + strings.Join(e.Errors, "; ") + ")"
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// IsStatus reports whether err carries a StatusError.
func IsStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// IsMalformed reports whether err is a malformed response error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}
