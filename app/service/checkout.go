package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
	"github.com/pranaycb/epay-gateway-bridge/app/factory"
	"github.com/pranaycb/epay-gateway-bridge/app/gateway"
	"github.com/pranaycb/epay-gateway-bridge/app/metrics"
	"github.com/pranaycb/epay-gateway-bridge/config"
)

const defaultBatchSize = int32(100)

type orderRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Order, error)
	TransitionStatus(ctx context.Context, id uint64, fromStatus, toStatus, note string) (bool, error)
}

type attemptRepository interface {
	Create(ctx context.Context, attempt *entity.PaymentAttempt) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.PaymentAttempt, error)
	FindLatestByOrderID(ctx context.Context, orderID uint64) (*entity.PaymentAttempt, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.PaymentAttempt, error)
}

type callbackRecordRepository interface {
	Create(ctx context.Context, record *entity.CallbackRecord) error
}

type processorClient interface {
	CreatePayment(ctx context.Context, input *gateway.CreateInput) (*gateway.CreateOutput, error)
	VerifyAndParseCallback(payload []byte, signature string) (*gateway.CallbackNotification, error)
}

// Notifier receives the single side effect of a terminal transition. It is
// invoked at most once per order, inside the per-order lock.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *entity.Order)
	OrderFailed(ctx context.Context, order *entity.Order)
}

type GatewayService struct {
	orders    orderRepository
	attempts  attemptRepository
	callbacks callbackRecordRepository
	processor processorClient
	notifier  Notifier

	gatewayCfg config.GatewayConfig
	bridgeCfg  config.BridgeConfig

	locks  orderLocks
	logger logrus.FieldLogger
}

func NewGatewayService(
	orders orderRepository,
	attempts attemptRepository,
	callbacks callbackRecordRepository,
	processor processorClient,
	notifier Notifier,
	gatewayCfg config.GatewayConfig,
	bridgeCfg config.BridgeConfig,
) *GatewayService {
	if notifier == nil {
		notifier = NewLogNotifier()
	}

	return &GatewayService{
		orders:     orders,
		attempts:   attempts,
		callbacks:  callbacks,
		processor:  processor,
		notifier:   notifier,
		gatewayCfg: gatewayCfg,
		bridgeCfg:  bridgeCfg,
		logger:     factory.NewModuleLogger("gateway-service"),
	}
}

// InitiatePayment runs the synchronous checkout path: load the order, issue
// a fresh transaction id, ask the processor for a hosted payment URL, and
// persist the attempt so the eventual webhook can be correlated. On any
// failure nothing pending is left behind.
func (s *GatewayService) InitiatePayment(ctx context.Context, orderID uint64) (*entity.PaymentAttempt, error) {
	if !s.gatewayCfg.Enabled {
		return nil, ErrGatewayDisabled
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != entity.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotPayable, order.Status)
	}

	transactionID, err := newTransactionID()
	if err != nil {
		return nil, err
	}

	input := &gateway.CreateInput{
		TransactionID: transactionID,
		OrderID:       order.ID,
		AmountCents:   order.TotalCents,
		CustomerName:  strings.TrimSpace(order.CustomerName),
		CustomerPhone: strings.TrimSpace(order.CustomerPhone),
		CustomerEmail: strings.TrimSpace(order.CustomerEmail),
		CallbackURL:   joinReturnURL(s.bridgeCfg.ReturnURLBase, order.ID),
		WebhookURL:    s.bridgeCfg.WebhookURL,
	}

	output, err := s.processor.CreatePayment(ctx, input)
	if err != nil {
		metrics.PaymentsInitiated.WithLabelValues(paymentResultLabel(err)).Inc()
		return nil, err
	}

	now := time.Now().UTC()
	paymentURL := output.PaymentURL
	attempt := &entity.PaymentAttempt{
		TransactionID: transactionID,
		OrderID:       order.ID,
		AmountCents:   order.TotalCents,
		Currency:      order.Currency,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		CallbackURL:   input.CallbackURL,
		WebhookURL:    input.WebhookURL,
		PaymentURL:    &paymentURL,
		Status:        entity.AttemptStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		metrics.PaymentsInitiated.WithLabelValues("store_error").Inc()
		return nil, err
	}

	metrics.PaymentsInitiated.WithLabelValues("success").Inc()
	return attempt, nil
}

func (s *GatewayService) GetAttempt(ctx context.Context, transactionID string) (*entity.PaymentAttempt, error) {
	attempt, err := s.attempts.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrOrderNotFound
	}
	return attempt, nil
}

func paymentResultLabel(err error) string {
	var paymentErr *gateway.PaymentError
	if errors.As(err, &paymentErr) {
		return string(paymentErr.Kind)
	}
	return "error"
}

func joinReturnURL(base string, orderID uint64) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/" + strconv.FormatUint(orderID, 10)
}

func (s *GatewayService) batchSize() int32 {
	if s.bridgeCfg.JobBatchSize > 0 {
		return s.bridgeCfg.JobBatchSize
	}
	return defaultBatchSize
}

// orderLocks serializes check-then-mutate per order id. Entries are
// refcounted so the map does not grow with order history.
type orderLocks struct {
	mu    sync.Mutex
	items map[uint64]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func (l *orderLocks) acquire(orderID uint64) func() {
	l.mu.Lock()
	if l.items == nil {
		l.items = make(map[uint64]*orderLock)
	}
	entry, ok := l.items[orderID]
	if !ok {
		entry = &orderLock{}
		l.items[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.items, orderID)
		}
		l.mu.Unlock()
	}
}
