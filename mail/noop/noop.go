package noop

import (
	"context"
	"net/http"
	"sync"

	"github.com/pure-golang/board-mailer/mail"
)

var _ mail.Sender = (*Sender)(nil)

// Sender records emails instead of sending them. Used for dry runs and tests.
type Sender struct {
	mx     sync.Mutex
	sent   []mail.Email
	closed bool
}

// NewSender creates a new no-op Sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send records email and answers like an accepting provider.
func (n *Sender) Send(_ context.Context, email mail.Email) (mail.Receipt, error) {
	n.mx.Lock()
	defer n.mx.Unlock()

	if n.closed {
		return mail.Receipt{}, &mail.SendError{To: email.To.Address, Err: mail.ErrClosed}
	}
	n.sent = append(n.sent, email)
	return mail.Receipt{StatusCode: http.StatusAccepted}, nil
}

// Sent returns a copy of everything passed to Send.
func (n *Sender) Sent() []mail.Email {
	n.mx.Lock()
	defer n.mx.Unlock()

	return append([]mail.Email(nil), n.sent...)
}

// Close is idempotent.
func (n *Sender) Close() error {
	n.mx.Lock()
	defer n.mx.Unlock()

	n.closed = true
	return nil
}
