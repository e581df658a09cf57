package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the bridge's view of the platform's order table. The
// bridge never inserts orders; it reads them and applies status transitions.
type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	query := `
		SELECT id, number, status, customer_name, customer_phone, customer_email,
			total_cents, currency, note, created_at, updated_at
		FROM orders
		WHERE id = ?
	`

	order := &entity.Order{}
	var note sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.Number,
		&order.Status,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerEmail,
		&order.TotalCents,
		&order.Currency,
		&note,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	order.Note = stringPtrFromNull(note)

	return order, nil
}

// TransitionStatus moves an order from one status to another as a single
// compare-and-swap. It returns false when the order was not in fromStatus
// anymore, which callers treat as a concurrent or duplicate delivery.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id uint64, fromStatus, toStatus, note string) (bool, error) {
	query := `
		UPDATE orders
		SET status = ?, note = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query, toStatus, note, id, fromStatus)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
