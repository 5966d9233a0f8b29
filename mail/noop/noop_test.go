package noop

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/board-mailer/mail"
)

func TestSender_Send(t *testing.T) {
	sender := NewSender()

	email := mail.Email{
		From:    mail.Address{Address: "from@example.com"},
		To:      mail.Address{Address: "ann@x.com"},
		Subject: "Test",
		Body:    "Hi Ann",
	}

	receipt, err := sender.Send(context.Background(), email)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, receipt.StatusCode)
	assert.Equal(t, []mail.Email{email}, sender.Sent())
}

func TestSender_SendAfterClose(t *testing.T) {
	sender := NewSender()
	require.NoError(t, sender.Close())

	_, err := sender.Send(context.Background(), mail.Email{To: mail.Address{Address: "ann@x.com"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, mail.ErrClosed)
	assert.Empty(t, sender.Sent())
}

func TestSender_CloseTwice(t *testing.T) {
	sender := NewSender()

	assert.NoError(t, sender.Close())
	assert.NoError(t, sender.Close())
}
