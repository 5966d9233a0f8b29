package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// itemsTotal counts processed board items by outcome.
	itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_mailer_items_total",
			Help: "Board items processed, by outcome.",
		},
		[]string{"outcome"},
	)

	// sendDuration tracks provider call latency.
	sendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_mailer_send_duration_seconds",
			Help:    "Email provider call duration.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// lastRunItems is the number of items fetched by the latest run.
	lastRunItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_mailer_last_run_items",
			Help: "Items fetched from the board in the latest run.",
		},
	)
)

func init() {
	prometheus.MustRegister(itemsTotal, sendDuration, lastRunItems)
}

func recordOutcome(s Status) {
	itemsTotal.WithLabelValues(string(s)).Inc()
}

func recordSend(s Status, seconds float64) {
	sendDuration.WithLabelValues(string(s)).Observe(seconds)
}
