package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
	"github.com/pranaycb/epay-gateway-bridge/app/metrics"
)

const expiredNote = "Payment attempt expired without a processor callback."

// RunExpirePendingBatch fails orders whose payment attempt never received a
// callback within the pending timeout. It goes through the same per-order
// lock and compare-and-swap as the webhook path, so a callback racing the
// expiry cannot double-fire.
func (s *GatewayService) RunExpirePendingBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.bridgeCfg.PendingTimeout)
	items, err := s.attempts.ListStalePending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, attempt := range items {
		if attempt == nil {
			continue
		}
		if err := s.expireAttempt(ctx, attempt); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func (s *GatewayService) expireAttempt(ctx context.Context, attempt *entity.PaymentAttempt) error {
	unlock := s.locks.acquire(attempt.OrderID)
	defer unlock()

	order, err := s.orders.FindByID(ctx, attempt.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return s.attempts.UpdateStatus(ctx, attempt.ID, entity.AttemptStatusExpired)
	}

	switch order.Status {
	case entity.OrderStatusPending:
		note := fmt.Sprintf("%s (trxnid %s)", expiredNote, attempt.TransactionID)
		applied, err := s.orders.TransitionStatus(ctx, order.ID, entity.OrderStatusPending, entity.OrderStatusFailed, note)
		if err != nil {
			return err
		}
		if applied {
			metrics.AttemptsExpired.Inc()
			order.Status = entity.OrderStatusFailed
			s.notifier.OrderFailed(ctx, order)
		}
		return s.attempts.UpdateStatus(ctx, attempt.ID, entity.AttemptStatusExpired)
	case entity.OrderStatusCompleted:
		// The order finished but the attempt row lagged behind; align it.
		return s.attempts.UpdateStatus(ctx, attempt.ID, entity.AttemptStatusCompleted)
	default:
		return s.attempts.UpdateStatus(ctx, attempt.ID, entity.AttemptStatusExpired)
	}
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
