package dispatch

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pure-golang/board-mailer/logger"
	"github.com/pure-golang/board-mailer/mail"
	"github.com/pure-golang/board-mailer/monday"
)

var tracer = otel.Tracer("github.com/pure-golang/board-mailer/dispatch")

// Board supplies the rows to mail.
type Board interface {
	FetchItems(ctx context.Context, columnIDs ...string) (*monday.Page, error)
}

// Dispatcher runs one fetch-and-send pass over a board.
type Dispatcher struct {
	cfg    Config
	board  Board
	sender mail.Sender
}

func New(cfg Config, board Board, sender mail.Sender) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg.withDefaults(),
		board:  board,
		sender: sender,
	}
}

// Run fetches the board and sends one email per complete item, in board
// order. A failed send is recorded in the report and the run moves on; only
// fetch errors and context cancellation end the run early.
func (d *Dispatcher) Run(ctx context.Context) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Run")
	defer span.End()

	start := time.Now()
	log := logger.FromContext(ctx)

	page, err := d.board.FetchItems(ctx, d.cfg.EmailColumn, d.cfg.ContentColumn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "failed to fetch board items")
	}

	lastRunItems.Set(float64(len(page.Items)))
	span.SetAttributes(attribute.Int("dispatch.items", len(page.Items)))

	report := &Report{Truncated: page.Cursor != ""}
	if report.Truncated {
		log.Warn("board has more items than were fetched, the rest are ignored", "fetched", len(page.Items))
	}

	cols := Columns{Email: d.cfg.EmailColumn, Content: d.cfg.ContentColumn}
	for _, item := range page.Items {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, errors.Wrapf(err, "stopped after %d of %d items", len(report.Outcomes), len(page.Items))
		}

		outcome := d.process(ctx, item, cols)
		recordOutcome(outcome.Status)
		report.add(outcome)
	}

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("dispatch.sent", report.Sent()),
		attribute.Int("dispatch.failed", report.Failed()),
		attribute.Int("dispatch.skipped", report.Skipped()),
	)
	span.SetStatus(codes.Ok, "")

	log.Info("run finished",
		"items", len(page.Items),
		"sent", report.Sent(),
		"failed", report.Failed(),
		"skipped", report.Skipped(),
		"duration", report.Duration,
	)

	return report, nil
}

func (d *Dispatcher) process(ctx context.Context, item monday.Item, cols Columns) Outcome {
	log := logger.FromContext(ctx).With("item", item.Name)

	r, ok := Extract(item, cols)
	if !ok {
		log.Info("skipping item due to missing email or content")
		return Outcome{Recipient: r, Status: StatusSkipped}
	}

	log.Info("sending email", "to", r.Email)

	email := mail.Email{
		From:    mail.Address{Name: d.cfg.FromName, Address: d.cfg.From},
		To:      mail.Address{Address: r.Email},
		Subject: d.cfg.Subject,
		Body:    r.Content,
	}

	sendStart := time.Now()
	receipt, err := d.sender.Send(ctx, email)
	if err != nil {
		recordSend(StatusFailed, time.Since(sendStart).Seconds())
		logger.FromContextWithErr(ctx, err).Error("failed to send email", "item", item.Name, "to", r.Email)
		return Outcome{Recipient: r, Status: StatusFailed, StatusCode: mail.StatusCode(err), Err: err}
	}
	recordSend(StatusSent, time.Since(sendStart).Seconds())

	log.Info("email sent", "to", r.Email, "status_code", receipt.StatusCode)
	return Outcome{Recipient: r, Status: StatusSent, StatusCode: receipt.StatusCode}
}
