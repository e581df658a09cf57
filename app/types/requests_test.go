package types

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewInitiatePaymentRequestFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/orders/12/pay", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("12")

	parsed, err := NewInitiatePaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.OrderID != 12 {
		t.Fatalf("expected order id 12, got %d", parsed.OrderID)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestNewInitiatePaymentRequestRejectsNonNumericID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/orders/abc/pay", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("abc")

	if _, err := NewInitiatePaymentRequestFromContext(ctx); err == nil {
		t.Fatal("expected parse error for non-numeric order id")
	}
}

func TestInitiatePaymentRequestValidateRejectsZero(t *testing.T) {
	req := &InitiatePaymentRequest{OrderID: 0}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for order id 0")
	}
}

func TestGetAttemptRequestTrimsParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/payments/abc123", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("trxnid")
	ctx.SetParamValues(" abc123 ")

	parsed, err := NewGetAttemptRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.TransactionID != "abc123" {
		t.Fatalf("expected trimmed transaction id, got %q", parsed.TransactionID)
	}
}

func TestNewWebhookRequestFromContextReadsBodyAndHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/webhooks/epay", bytes.NewBufferString(`{"status":"success","meta":{"orderId":7}}`))
	req.Header.Set(SignatureHeader, " t=1,v1=abc ")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	parsed, err := NewWebhookRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.Signature != "t=1,v1=abc" {
		t.Fatalf("expected trimmed signature header, got %q", parsed.Signature)
	}
	if len(parsed.Payload) == 0 {
		t.Fatal("expected raw payload to be captured")
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid webhook request, got %v", err)
	}
}

func TestWebhookRequestValidateRequiresPayload(t *testing.T) {
	req := &WebhookRequest{Signature: "t=1,v1=abc"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for empty payload")
	}
}
