package entity

import "time"

const (
	CallbackOutcomeApplied   = "applied"
	CallbackOutcomeDuplicate = "duplicate"
	CallbackOutcomeIgnored   = "ignored"
	CallbackOutcomeRejected  = "rejected"
)

// CallbackRecord is an append-only log entry for every webhook delivery,
// accepted or not.
type CallbackRecord struct {
	ID uint64

	OrderID *uint64

	Status      string
	Signature   string
	PayloadJSON string

	Outcome string
	Error   *string

	ReceivedAt time.Time
}
