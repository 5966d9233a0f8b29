package dispatch

import (
	"time"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is what happened to a single item.
type Outcome struct {
	Recipient  Recipient
	Status     Status
	StatusCode int   // provider status, when known
	Err        error // set for StatusFailed
}

// Report collects outcomes in board order.
type Report struct {
	Outcomes  []Outcome
	Truncated bool // the board has items past the fetched page
	Duration  time.Duration
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

func (r *Report) Sent() int    { return r.count(StatusSent) }
func (r *Report) Failed() int  { return r.count(StatusFailed) }
func (r *Report) Skipped() int { return r.count(StatusSkipped) }
