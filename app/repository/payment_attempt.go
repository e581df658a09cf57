package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
)

var (
	ErrAttemptNotFound      = errors.New("payment attempt not found")
	ErrAttemptAlreadyExists = errors.New("payment attempt already exists")
)

type PaymentAttemptRepository struct {
	db DBTX
}

func NewPaymentAttemptRepository(db DBTX) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{db: db}
}

func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (
			transaction_id, order_id, amount_cents, currency,
			customer_name, customer_phone, customer_email,
			callback_url, webhook_url, payment_url, status,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		attempt.TransactionID,
		attempt.OrderID,
		attempt.AmountCents,
		attempt.Currency,
		attempt.CustomerName,
		attempt.CustomerPhone,
		attempt.CustomerEmail,
		attempt.CallbackURL,
		attempt.WebhookURL,
		nullableStringValue(attempt.PaymentURL),
		attempt.Status,
		attempt.CreatedAt,
		attempt.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAttemptAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	attempt.ID = uint64(id)
	return nil
}

func (r *PaymentAttemptRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	query := `UPDATE payment_attempts SET status = ?, updated_at = NOW() WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAttemptNotFound
	}

	return nil
}

func (r *PaymentAttemptRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.PaymentAttempt, error) {
	query := selectAttempt + ` WHERE transaction_id = ? LIMIT 1`

	attempt := &entity.PaymentAttempt{}
	if err := scanAttempt(r.db.QueryRowContext(ctx, query, transactionID), attempt); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return attempt, nil
}

// FindLatestByOrderID returns the most recent attempt for an order, if any.
// Re-attempted checkouts leave older rows behind; only the latest one is
// ever still pending.
func (r *PaymentAttemptRepository) FindLatestByOrderID(ctx context.Context, orderID uint64) (*entity.PaymentAttempt, error) {
	query := selectAttempt + ` WHERE order_id = ? ORDER BY id DESC LIMIT 1`

	attempt := &entity.PaymentAttempt{}
	if err := scanAttempt(r.db.QueryRowContext(ctx, query, orderID), attempt); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return attempt, nil
}

func (r *PaymentAttemptRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.PaymentAttempt, error) {
	query := selectAttempt + `
		WHERE status = ? AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.AttemptStatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*entity.PaymentAttempt, 0)
	for rows.Next() {
		item := &entity.PaymentAttempt{}
		if err := scanAttempt(rows, item); err != nil {
			return nil, err
		}
		attempts = append(attempts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}

const selectAttempt = `
	SELECT id, transaction_id, order_id, amount_cents, currency,
		customer_name, customer_phone, customer_email,
		callback_url, webhook_url, payment_url, status,
		created_at, updated_at
	FROM payment_attempts
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(scan rowScanner, attempt *entity.PaymentAttempt) error {
	var paymentURL sql.NullString

	err := scan.Scan(
		&attempt.ID,
		&attempt.TransactionID,
		&attempt.OrderID,
		&attempt.AmountCents,
		&attempt.Currency,
		&attempt.CustomerName,
		&attempt.CustomerPhone,
		&attempt.CustomerEmail,
		&attempt.CallbackURL,
		&attempt.WebhookURL,
		&paymentURL,
		&attempt.Status,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if err != nil {
		return err
	}

	attempt.PaymentURL = stringPtrFromNull(paymentURL)
	return nil
}
