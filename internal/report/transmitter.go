// Package report delivers structured compliance reports to the public health
// reporting channel. Every submission resolves to a terminal receipt for the
// current invocation; retry is the channel's own concern.
package report

import "context"

// Receipt statuses. All four are terminal from the caller's perspective.
const (
	StatusSent         = "sent"
	StatusQueued       = "queued"
	StatusManualReview = "manual_review"
	StatusError        = "error"
)

// Receipt is the immediate outcome of one submission attempt.
type Receipt struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Transmitter submits a structured payload to the reporting channel.
type Transmitter interface {
	Submit(ctx context.Context, payload any) (Receipt, error)
}
