package entity

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Order is owned by the surrounding platform. The bridge only reads it and
// transitions its status; everything else is opaque.
type Order struct {
	ID uint64

	Number string
	Status string

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	TotalCents int64
	Currency   string

	Note *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TerminalOrderStatus reports whether a status may never be left again.
func TerminalOrderStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusFailed
}
