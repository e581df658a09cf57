package service

import "errors"

var (
	ErrGatewayDisabled  = errors.New("payment gateway is disabled")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotPayable  = errors.New("order is not payable")
	ErrUnknownOrder     = errors.New("callback references an order that was never issued a payment attempt")
	ErrOrderUnavailable = errors.New("order store unavailable")
)
