package repository

import (
	"context"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
)

type CallbackRecordRepository struct {
	db DBTX
}

func NewCallbackRecordRepository(db DBTX) *CallbackRecordRepository {
	return &CallbackRecordRepository{db: db}
}

func (r *CallbackRecordRepository) Create(ctx context.Context, record *entity.CallbackRecord) error {
	query := `
		INSERT INTO callback_records (
			order_id, status, signature, payload_json, outcome, error, received_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(record.OrderID),
		record.Status,
		record.Signature,
		record.PayloadJSON,
		record.Outcome,
		nullableStringValue(record.Error),
		record.ReceivedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)

	return nil
}
