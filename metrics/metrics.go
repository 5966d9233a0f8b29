package metrics

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Config struct {
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"` // metrics are not pushed when empty
	Job            string `envconfig:"METRICS_JOB" default:"board_mailer"`
}

// Pusher publishes a gatherer's metrics to a Prometheus Pushgateway once a
// batch run is over.
type Pusher struct {
	config Config
	pusher *push.Pusher
}

// New creates a Pusher for g. A nil client means http.DefaultClient.
func New(config Config, g prometheus.Gatherer, client *http.Client) *Pusher {
	if config.Job == "" {
		config.Job = "board_mailer"
	}
	p := &Pusher{config: config}
	if config.PushgatewayURL == "" {
		return p
	}

	p.pusher = push.New(config.PushgatewayURL, config.Job).Gatherer(g)
	if client != nil {
		p.pusher = p.pusher.Client(client)
	}
	return p
}

// NewDefault creates a Pusher for the default registry.
func NewDefault(config Config) *Pusher {
	return New(config, prometheus.DefaultGatherer, nil)
}

func (p *Pusher) Enabled() bool {
	return p.pusher != nil
}

// Push replaces the job's metric group on the gateway. No-op when disabled.
func (p *Pusher) Push(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return errors.Wrap(p.pusher.PushContext(ctx), "failed to push metrics")
}
