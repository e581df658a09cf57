package gateway

import "fmt"

type PaymentErrorKind string

const (
	PaymentErrorTransport         PaymentErrorKind = "transport"
	PaymentErrorMalformedResponse PaymentErrorKind = "malformed_response"
	PaymentErrorDeclined          PaymentErrorKind = "declined"
)

// PaymentError is the only error type CreatePayment returns. The kind tells
// the checkout path what to surface to the shopper.
type PaymentError struct {
	Kind    PaymentErrorKind
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment request %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("payment request %s: %s", e.Kind, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

type CallbackErrorKind string

const (
	CallbackErrorMalformed       CallbackErrorKind = "malformed"
	CallbackErrorUnauthenticated CallbackErrorKind = "unauthenticated"
)

// CallbackError is returned by VerifyAndParseCallback when an inbound
// delivery must be rejected before any order is looked at.
type CallbackError struct {
	Kind    CallbackErrorKind
	Message string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s: %s", e.Kind, e.Message)
}
