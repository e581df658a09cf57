package mapper

import (
	"fmt"
	"time"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
	"github.com/pranaycb/epay-gateway-bridge/app/types"
)

func AttemptToResponse(item *entity.PaymentAttempt) *types.PaymentAttemptResponse {
	if item == nil {
		return nil
	}

	return &types.PaymentAttemptResponse{
		TransactionID: item.TransactionID,
		OrderID:       item.OrderID,
		Amount:        formatCents(item.AmountCents),
		Currency:      item.Currency,
		Status:        item.Status,
		PaymentURL:    derefString(item.PaymentURL),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
