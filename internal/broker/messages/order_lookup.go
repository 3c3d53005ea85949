package messages

import "time"

const (
	OutcomeFound       = "found"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

// OrderLookup is published after every lookup attempt. The customer email is
// deliberately absent.
type OrderLookup struct {
	OrderID    string    `json:"order_id"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Status     int       `json:"status,omitempty"`
	Shipments  int       `json:"shipments"`
	LookedUpAt time.Time `json:"looked_up_at"`
}
