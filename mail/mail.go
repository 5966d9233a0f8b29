package mail

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Sender delivers a single email and reports what the provider answered.
type Sender interface {
	Send(ctx context.Context, email Email) (Receipt, error)
	io.Closer
}

// Email is a single plain-text message.
type Email struct {
	From    Address
	To      Address
	Subject string
	Body    string // plain text
}

// Address represents an email address.
type Address struct {
	Name    string // "John Doe"
	Address string // "john@example.com"
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// Receipt is the provider's answer to an accepted message.
type Receipt struct {
	StatusCode int
	MessageID  string
}

var ErrClosed = errors.New("sender is closed")

// SendError wraps a rejected or undeliverable message.
// StatusCode is zero when the provider was never reached.
type SendError struct {
	To         string
	StatusCode int
	Body       string
	Err        error
}

func (e *SendError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("send to %s failed with status %d: %v", e.To, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("send to %s failed: %v", e.To, e.Err)
	default:
		return fmt.Sprintf("send to %s failed with status %d: %s", e.To, e.StatusCode, e.Body)
	}
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.StatusCode
	}
	return 0
}
