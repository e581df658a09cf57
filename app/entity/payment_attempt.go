package entity

import "time"

const (
	AttemptStatusPending   = "pending"
	AttemptStatusCompleted = "completed"
	AttemptStatusFailed    = "failed"
	AttemptStatusExpired   = "expired"
)

// PaymentAttempt correlates one outbound payment request with the webhook
// that eventually reports its outcome. Immutable after creation except for
// the status column.
type PaymentAttempt struct {
	ID uint64

	TransactionID string
	OrderID       uint64

	AmountCents int64
	Currency    string

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	CallbackURL string
	WebhookURL  string
	PaymentURL  *string

	Status string

	CreatedAt time.Time
	UpdatedAt time.Time
}
