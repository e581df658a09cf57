package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const SignatureHeader = "X-Epay-Signature"

type InitiatePaymentRequest struct {
	OrderID uint64
}

func NewInitiatePaymentRequestFromContext(ctx echo.Context) (*InitiatePaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &InitiatePaymentRequest{OrderID: id}, nil
}

func (r *InitiatePaymentRequest) Validate() error {
	if r.OrderID == 0 {
		return errors.New("invalid order id")
	}
	return nil
}

type GetAttemptRequest struct {
	TransactionID string
}

func NewGetAttemptRequestFromContext(ctx echo.Context) (*GetAttemptRequest, error) {
	return &GetAttemptRequest{TransactionID: strings.TrimSpace(ctx.Param("trxnid"))}, nil
}

func (r *GetAttemptRequest) Validate() error {
	if r.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	return nil
}

type WebhookRequest struct {
	Signature string
	Payload   []byte
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	return &WebhookRequest{
		Signature: strings.TrimSpace(ctx.Request().Header.Get(SignatureHeader)),
		Payload:   rawBody,
	}, nil
}

func (r *WebhookRequest) Validate() error {
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}
