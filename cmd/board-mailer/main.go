package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/pure-golang/board-mailer/dispatch"
	"github.com/pure-golang/board-mailer/env"
	"github.com/pure-golang/board-mailer/logger"
	"github.com/pure-golang/board-mailer/mail"
	"github.com/pure-golang/board-mailer/mail/noop"
	"github.com/pure-golang/board-mailer/mail/sendgrid"
	"github.com/pure-golang/board-mailer/metrics"
	"github.com/pure-golang/board-mailer/monday"
	"github.com/pure-golang/board-mailer/tracing"
	"github.com/pure-golang/board-mailer/tracing/otlp"
)

// Config is the whole job configuration, loaded once at startup.
// Required variables, in reporting order: MONDAY_API_KEY, BOARD_ID,
// SENDGRID_API_KEY, FROM_EMAIL.
type Config struct {
	Monday   monday.Config
	SendGrid sendgrid.Config
	Dispatch dispatch.Config
	DryRun   bool `envconfig:"DRY_RUN" default:"false"`

	Log     logger.Config
	Metrics metrics.Config
	Tracing otlp.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx); err != nil {
		logger.WithErr(err).Error("board-mailer failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.InitConfig(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Monday.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid board configuration")
	}
	return cfg, nil
}

func run(ctx context.Context) (*dispatch.Report, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.InitDefault(cfg.Log)
	ctx = logger.NewContext(ctx, log)

	if cfg.Tracing.Enabled() {
		provider, err := tracing.Init(otlp.NewProviderBuilder(cfg.Tracing))
		if err != nil {
			logger.WithErr(err).Warn("tracing disabled")
		}
		defer closeWithLog(log, provider, "tracing provider")
	}

	sender := newSender(cfg)
	defer closeWithLog(log, sender, "mail sender")

	board := monday.NewClient(cfg.Monday)

	log.Info("fetching board items", "board_id", cfg.Monday.BoardID, "dry_run", cfg.DryRun)
	report, runErr := dispatch.New(cfg.Dispatch, board, sender).Run(ctx)

	pusher := metrics.NewDefault(cfg.Metrics)
	if err := pusher.Push(context.WithoutCancel(ctx)); err != nil {
		logger.WithErr(err).Warn("metrics not pushed")
	}

	return report, runErr
}

func newSender(cfg Config) mail.Sender {
	if cfg.DryRun {
		return noop.NewSender()
	}
	return sendgrid.NewSender(cfg.SendGrid, nil)
}

func closeWithLog(log *slog.Logger, c io.Closer, name string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close "+name, "error", err.Error())
	}
}
