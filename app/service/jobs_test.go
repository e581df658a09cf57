package service

import (
	"context"
	"testing"
	"time"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
)

func seedStaleAttempt(t *testing.T, attempts *serviceAttemptRepo, orderID uint64, transactionID string, age time.Duration) *entity.PaymentAttempt {
	t.Helper()
	createdAt := time.Now().UTC().Add(-age)
	attempt := &entity.PaymentAttempt{
		TransactionID: transactionID,
		OrderID:       orderID,
		AmountCents:   125050,
		Currency:      "BDT",
		Status:        entity.AttemptStatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if err := attempts.Create(context.Background(), attempt); err != nil {
		t.Fatalf("seed attempt failed: %v", err)
	}
	return attempt
}

func TestRunExpirePendingBatchFailsStaleOrder(t *testing.T) {
	orders := newServiceOrderRepo()
	orders.orders[7] = pendingOrder(7)
	attempts := newServiceAttemptRepo()
	attempt := seedStaleAttempt(t, attempts, 7, "trx-stale-1", 2*time.Hour)
	notifier := &serviceNotifier{}
	svc := newGatewayServiceForTest(orders, attempts, &serviceCallbackRepo{}, &serviceProcessor{}, notifier)

	if err := svc.RunExpirePendingBatch(context.Background()); err != nil {
		t.Fatalf("run expire pending batch failed: %v", err)
	}

	if orders.status(7) != entity.OrderStatusFailed {
		t.Fatalf("expected failed order, got %s", orders.status(7))
	}
	if attempts.status(attempt.ID) != entity.AttemptStatusExpired {
		t.Fatalf("expected expired attempt, got %s", attempts.status(attempt.ID))
	}
	if len(notifier.failed) != 1 || notifier.failed[0] != 7 {
		t.Fatalf("expected one failure notification for order 7, got %v", notifier.failed)
	}
}

func TestRunExpirePendingBatchSkipsFreshAttempts(t *testing.T) {
	orders := newServiceOrderRepo()
	orders.orders[7] = pendingOrder(7)
	attempts := newServiceAttemptRepo()
	attempt := seedStaleAttempt(t, attempts, 7, "trx-fresh-1", time.Minute)
	svc := newGatewayServiceForTest(orders, attempts, &serviceCallbackRepo{}, &serviceProcessor{}, &serviceNotifier{})

	if err := svc.RunExpirePendingBatch(context.Background()); err != nil {
		t.Fatalf("run expire pending batch failed: %v", err)
	}

	if orders.status(7) != entity.OrderStatusPending {
		t.Fatalf("fresh attempt must not expire the order, got %s", orders.status(7))
	}
	if attempts.status(attempt.ID) != entity.AttemptStatusPending {
		t.Fatalf("fresh attempt must stay pending, got %s", attempts.status(attempt.ID))
	}
}

func TestRunExpirePendingBatchAlignsCompletedOrder(t *testing.T) {
	// A callback completed the order but the attempt row update was lost.
	// The expiry job aligns the attempt instead of failing a paid order.
	orders := newServiceOrderRepo()
	order := pendingOrder(7)
	order.Status = entity.OrderStatusCompleted
	orders.orders[7] = order
	attempts := newServiceAttemptRepo()
	attempt := seedStaleAttempt(t, attempts, 7, "trx-lagging-1", 2*time.Hour)
	notifier := &serviceNotifier{}
	svc := newGatewayServiceForTest(orders, attempts, &serviceCallbackRepo{}, &serviceProcessor{}, notifier)

	if err := svc.RunExpirePendingBatch(context.Background()); err != nil {
		t.Fatalf("run expire pending batch failed: %v", err)
	}

	if orders.status(7) != entity.OrderStatusCompleted {
		t.Fatalf("completed order must not change, got %s", orders.status(7))
	}
	if attempts.status(attempt.ID) != entity.AttemptStatusCompleted {
		t.Fatalf("expected attempt aligned to completed, got %s", attempts.status(attempt.ID))
	}
	if len(notifier.failed) != 0 {
		t.Fatalf("completed order must not notify failure, got %v", notifier.failed)
	}
}

func TestRunExpirePendingBatchExpiresAttemptForMissingOrder(t *testing.T) {
	attempts := newServiceAttemptRepo()
	attempt := seedStaleAttempt(t, attempts, 42, "trx-orphan-1", 2*time.Hour)
	svc := newGatewayServiceForTest(newServiceOrderRepo(), attempts, &serviceCallbackRepo{}, &serviceProcessor{}, &serviceNotifier{})

	if err := svc.RunExpirePendingBatch(context.Background()); err != nil {
		t.Fatalf("run expire pending batch failed: %v", err)
	}

	if attempts.status(attempt.ID) != entity.AttemptStatusExpired {
		t.Fatalf("expected expired attempt, got %s", attempts.status(attempt.ID))
	}
}
