package recorder

import "time"

// Delivery kinds.
const (
	KindSummary      = "SUMMARY"
	KindConsolidated = "CONSOLIDATED"
	KindReply        = "REPLY"
)

// Delivery is one attempt to deliver an alert message.
type Delivery struct {
	RunID      string
	Kind       string
	Actionable int
	Success    bool
	Error      string
	SentAt     time.Time
}

// RunEvent summarizes one analysis run. Per-symbol scores are not kept.
type RunEvent struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Requested int
	Analyzed  int
	Skipped   int
	Trigger   string // "CRON", "MANUAL", "STARTUP", "API"
}

// Recorder keeps an audit trail of analysis runs and alert deliveries.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordDelivery(d *Delivery) error
	RecentDeliveries(limit int) ([]Delivery, error)
	Close() error
}
