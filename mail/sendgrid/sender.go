package sendgrid

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sendgrid/rest"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/board-mailer/mail"
)

var tracer = otel.Tracer("github.com/pure-golang/board-mailer/mail/sendgrid")

var _ mail.Sender = (*Sender)(nil)

// Sender implements mail.Sender on top of the SendGrid v3 mail send API.
type Sender struct {
	mx     sync.RWMutex
	cfg    Config
	client *rest.Client
	closed bool
}

// SenderOptions contains options for creating a Sender.
type SenderOptions struct {
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// NewSender creates a new SendGrid Sender.
func NewSender(cfg Config, options *SenderOptions) *Sender {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}

	hc := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
	if options != nil && options.HTTPClient != nil {
		hc = options.HTTPClient
	}

	return &Sender{
		cfg:    cfg,
		client: &rest.Client{HTTPClient: hc},
	}
}

// Send delivers a single plain-text email. Any failure, including a
// non-2xx answer from SendGrid, is returned as *mail.SendError.
func (s *Sender) Send(ctx context.Context, email mail.Email) (mail.Receipt, error) {
	ctx, span := tracer.Start(ctx, "SendGrid.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("sendgrid.host", s.cfg.Host),
		attribute.String("mail.subject", email.Subject),
	)

	receipt, err := s.send(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := mail.StatusCode(err); code != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", code))
		}
		return receipt, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", receipt.StatusCode))
	span.SetStatus(codes.Ok, "")
	return receipt, nil
}

func (s *Sender) send(ctx context.Context, email mail.Email) (mail.Receipt, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	to := email.To.Address
	if s.closed {
		return mail.Receipt{}, &mail.SendError{To: to, Err: mail.ErrClosed}
	}
	if email.From.Address == "" {
		return mail.Receipt{}, &mail.SendError{To: to, Err: errors.New("no from address specified")}
	}
	if to == "" {
		return mail.Receipt{}, &mail.SendError{Err: errors.New("no recipient specified")}
	}

	request := sg.GetRequest(s.cfg.APIKey, SendEndpoint, s.cfg.Host)
	request.Method = rest.Post
	request.Body = sgmail.GetRequestBody(buildMessage(email))

	resp, err := s.client.SendWithContext(ctx, request)
	if err != nil {
		return mail.Receipt{}, &mail.SendError{To: to, Err: errors.Wrap(err, "failed to call sendgrid")}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return mail.Receipt{}, &mail.SendError{To: to, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	return mail.Receipt{
		StatusCode: resp.StatusCode,
		MessageID:  messageID(resp.Headers),
	}, nil
}

func buildMessage(email mail.Email) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(email.From.Name, email.From.Address)
	to := sgmail.NewEmail(email.To.Name, email.To.Address)
	return sgmail.NewSingleEmail(from, email.Subject, to, email.Body, "")
}

func messageID(headers map[string][]string) string {
	return http.Header(headers).Get("X-Message-Id")
}

// Close closes the sender. Further Send calls fail with mail.ErrClosed.
func (s *Sender) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.closed = true
	s.client.HTTPClient.CloseIdleConnections()
	return nil
}
