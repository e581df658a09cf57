package controller

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pranaycb/epay-gateway-bridge/app/factory"
	"github.com/pranaycb/epay-gateway-bridge/app/gateway"
	"github.com/pranaycb/epay-gateway-bridge/app/mapper"
	"github.com/pranaycb/epay-gateway-bridge/app/service"
	"github.com/pranaycb/epay-gateway-bridge/app/types"
	"github.com/pranaycb/epay-gateway-bridge/config"
)

type PaymentController struct {
	gatewayService *service.GatewayService
	gatewayCfg     config.GatewayConfig
	logger         logrus.FieldLogger
}

func NewPaymentController(gatewayService *service.GatewayService, gatewayCfg config.GatewayConfig) *PaymentController {
	return &PaymentController{
		gatewayService: gatewayService,
		gatewayCfg:     gatewayCfg,
		logger:         factory.NewModuleLogger("payment-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// GatewayInfo exposes the checkout display copy the platform's settings own.
func (c *PaymentController) GatewayInfo(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.GatewayInfoResponse{
		Enabled:     c.gatewayCfg.Enabled,
		Title:       c.gatewayCfg.Title,
		Description: c.gatewayCfg.Description,
	})
}

func (c *PaymentController) InitiatePayment(ctx echo.Context) error {
	req, err := types.NewInitiatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid order id")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	attempt, err := c.gatewayService.InitiatePayment(ctx.Request().Context(), req.OrderID)
	if err != nil {
		var paymentErr *gateway.PaymentError
		switch {
		case errors.Is(err, service.ErrGatewayDisabled):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrOrderNotPayable):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case errors.As(err, &paymentErr):
			if paymentErr.Kind == gateway.PaymentErrorDeclined {
				return c.writeError(ctx, http.StatusPaymentRequired, paymentErr.Message)
			}
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Payment request failed")
			return c.writeError(ctx, http.StatusBadGateway, "payment request failed")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Initiate payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.InitiatePaymentResponse{
		TransactionID: attempt.TransactionID,
		PaymentURL:    derefString(attempt.PaymentURL),
	})
}

func (c *PaymentController) GetAttempt(ctx echo.Context) error {
	req, err := types.NewGetAttemptRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	attempt, err := c.gatewayService.GetAttempt(ctx.Request().Context(), req.TransactionID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment attempt not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get attempt failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.AttemptToResponse(attempt))
}

// HandleWebhook terminates processor deliveries. Status codes drive the
// processor's retry loop: 2xx and 4xx stop redelivery, 5xx asks for another
// attempt. No human sees these responses, so every branch is also logged.
// Deliveries carry no request id of their own, so each gets a generated one
// for log correlation across redeliveries.
func (c *PaymentController) HandleWebhook(ctx echo.Context) error {
	deliveryID := uuid.NewString()
	ctx.Response().Header().Set(echo.HeaderXRequestID, deliveryID)

	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "unreadable request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.gatewayService.HandleCallback(ctx.Request().Context(), req.Payload, req.Signature)
	if err != nil {
		logger := c.logger.WithField("delivery_id", deliveryID).WithError(err)
		var callbackErr *gateway.CallbackError
		switch {
		case errors.As(err, &callbackErr):
			logger.Warn("Webhook rejected")
			if callbackErr.Kind == gateway.CallbackErrorUnauthenticated {
				return c.writeError(ctx, http.StatusUnauthorized, callbackErr.Message)
			}
			return c.writeError(ctx, http.StatusBadRequest, callbackErr.Message)
		case errors.Is(err, service.ErrUnknownOrder):
			logger.Warn("Webhook for unknown order")
			return c.writeError(ctx, http.StatusGone, "order not applicable; do not retry")
		case errors.Is(err, service.ErrOrderUnavailable):
			logger.Error("Webhook processing deferred; store unavailable")
			return c.writeError(ctx, http.StatusServiceUnavailable, "temporary failure; retry later")
		default:
			logger.Error("Webhook processing failed")
			return c.writeError(ctx, http.StatusServiceUnavailable, "temporary failure; retry later")
		}
	}

	return ctx.JSON(http.StatusOK, &types.WebhookAckResponse{Outcome: result.Outcome, OrderID: result.OrderID})
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
