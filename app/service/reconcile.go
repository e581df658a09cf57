package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
	"github.com/pranaycb/epay-gateway-bridge/app/gateway"
	"github.com/pranaycb/epay-gateway-bridge/app/metrics"
)

const (
	completedNote = "Payment successfully completed via Epay Payment Gateway."
	failedNote    = "Payment failed via Epay Payment Gateway."
)

// ReconcileResult describes what a webhook delivery did to its order.
type ReconcileResult struct {
	Outcome string
	OrderID uint64
	Status  gateway.CallbackStatus
}

// HandleCallback reconciles one webhook delivery. Deliveries are
// at-least-once and may arrive concurrently or out of order; the per-order
// lock plus the compare-and-swap transition guarantee a single terminal
// mutation and a single notifier invocation per order.
func (s *GatewayService) HandleCallback(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error) {
	notification, err := s.processor.VerifyAndParseCallback(payload, signature)
	if err != nil {
		s.recordRejectedCallback(ctx, nil, payload, signature, err.Error())
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeRejected).Inc()
		return nil, err
	}

	unlock := s.locks.acquire(notification.OrderID)
	defer unlock()

	order, err := s.orders.FindByID(ctx, notification.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}

	attempt, err := s.attempts.FindLatestByOrderID(ctx, notification.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}

	// No attempt on file means this orderId was never issued by us. It will
	// never resolve, so the processor must stop redelivering it.
	if attempt == nil {
		s.recordRejectedCallback(ctx, nil, payload, signature, "no payment attempt issued for order")
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeRejected).Inc()
		s.logger.WithField("order_id", notification.OrderID).Warn("Callback for unknown order ignored")
		return nil, ErrUnknownOrder
	}

	// An attempt exists but the order row could not be loaded: the store is
	// in a state we cannot reconcile right now, so ask for a redelivery.
	if order == nil {
		return nil, fmt.Errorf("%w: order %d missing despite recorded attempt", ErrOrderUnavailable, notification.OrderID)
	}

	switch notification.Status {
	case gateway.StatusSuccess:
		return s.applyTransition(ctx, order, attempt, notification, entity.OrderStatusCompleted, completedNote)
	case gateway.StatusFailed:
		return s.applyTransition(ctx, order, attempt, notification, entity.OrderStatusFailed, failedNote)
	default:
		// Pending and unknown statuses carry nothing to act on yet;
		// acknowledge so the processor stops redelivering them.
		s.recordCallback(ctx, order.ID, notification, entity.CallbackOutcomeIgnored, signature)
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeIgnored).Inc()
		return &ReconcileResult{Outcome: entity.CallbackOutcomeIgnored, OrderID: order.ID, Status: notification.Status}, nil
	}
}

func (s *GatewayService) applyTransition(
	ctx context.Context,
	order *entity.Order,
	attempt *entity.PaymentAttempt,
	notification *gateway.CallbackNotification,
	target string,
	note string,
) (*ReconcileResult, error) {
	if order.Status == target {
		s.recordCallback(ctx, order.ID, notification, entity.CallbackOutcomeDuplicate, "")
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeDuplicate).Inc()
		return &ReconcileResult{Outcome: entity.CallbackOutcomeDuplicate, OrderID: order.ID, Status: notification.Status}, nil
	}

	// A conflicting delivery after the order already reached a different
	// terminal state never regresses it.
	if entity.TerminalOrderStatus(order.Status) {
		s.recordCallback(ctx, order.ID, notification, entity.CallbackOutcomeIgnored, "")
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeIgnored).Inc()
		s.logger.WithFields(map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
			"incoming": notification.Status,
		}).Warn("Late conflicting callback ignored")
		return &ReconcileResult{Outcome: entity.CallbackOutcomeIgnored, OrderID: order.ID, Status: notification.Status}, nil
	}

	noteWithRef := fmt.Sprintf("%s (trxnid %s)", note, attempt.TransactionID)
	applied, err := s.orders.TransitionStatus(ctx, order.ID, order.Status, target, noteWithRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	if !applied {
		// Another process won the compare-and-swap between our read and
		// write. The transition already happened exactly once.
		s.recordCallback(ctx, order.ID, notification, entity.CallbackOutcomeDuplicate, "")
		metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeDuplicate).Inc()
		return &ReconcileResult{Outcome: entity.CallbackOutcomeDuplicate, OrderID: order.ID, Status: notification.Status}, nil
	}

	attemptStatus := entity.AttemptStatusCompleted
	if target == entity.OrderStatusFailed {
		attemptStatus = entity.AttemptStatusFailed
	}
	if err := s.attempts.UpdateStatus(ctx, attempt.ID, attemptStatus); err != nil {
		s.logger.WithError(err).WithField("attempt_id", attempt.ID).Warn("Failed to update attempt status")
	}

	s.recordCallback(ctx, order.ID, notification, entity.CallbackOutcomeApplied, "")
	metrics.CallbacksProcessed.WithLabelValues(entity.CallbackOutcomeApplied).Inc()

	order.Status = target
	if target == entity.OrderStatusCompleted {
		s.notifier.OrderCompleted(ctx, order)
	} else {
		s.notifier.OrderFailed(ctx, order)
	}

	return &ReconcileResult{Outcome: entity.CallbackOutcomeApplied, OrderID: order.ID, Status: notification.Status}, nil
}

func (s *GatewayService) recordCallback(ctx context.Context, orderID uint64, notification *gateway.CallbackNotification, outcome string, signature string) {
	record := &entity.CallbackRecord{
		OrderID:     &orderID,
		Status:      string(notification.Status),
		Signature:   signature,
		PayloadJSON: string(notification.Raw),
		Outcome:     outcome,
		ReceivedAt:  notification.ReceivedAt,
	}
	if err := s.callbacks.Create(ctx, record); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("Failed to persist callback record")
	}
}

func (s *GatewayService) recordRejectedCallback(ctx context.Context, orderID *uint64, payload []byte, signature string, reason string) {
	trimmed := truncate(reason, 1024)
	record := &entity.CallbackRecord{
		OrderID:     orderID,
		Status:      string(gateway.StatusUnknown),
		Signature:   signature,
		PayloadJSON: string(payload),
		Outcome:     entity.CallbackOutcomeRejected,
		Error:       &trimmed,
		ReceivedAt:  time.Now().UTC(),
	}
	if err := s.callbacks.Create(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to persist rejected callback record")
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
