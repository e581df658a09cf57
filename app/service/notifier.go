package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pranaycb/epay-gateway-bridge/app/entity"
	"github.com/pranaycb/epay-gateway-bridge/app/factory"
)

// LogNotifier is the default Notifier; the surrounding platform injects its
// own when it wants to send completion emails or similar.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: factory.NewModuleLogger("order-notifier")}
}

func (n *LogNotifier) OrderCompleted(_ context.Context, order *entity.Order) {
	n.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
	}).Info("Order completed")
}

func (n *LogNotifier) OrderFailed(_ context.Context, order *entity.Order) {
	n.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
	}).Info("Order failed")
}
