package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pranaycb/epay-gateway-bridge/app/metrics"
)

const paymentRequestPath = "/api/v1/payment/request"

type CallbackStatus string

const (
	StatusSuccess CallbackStatus = "success"
	StatusFailed  CallbackStatus = "failed"
	StatusPending CallbackStatus = "pending"
	StatusUnknown CallbackStatus = "unknown"
)

type Config struct {
	BaseURL                   string
	APIToken                  string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

// Client talks to the ePay processor: outbound payment requests on the
// checkout path and verification of the webhooks it pushes back.
type Client struct {
	cfg     Config
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tolerance := cfg.SignatureToleranceSeconds
	if tolerance <= 0 {
		tolerance = 300
	}
	cfg.SignatureToleranceSeconds = tolerance
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "epay-payment-request",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.Set(state)

			logrus.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	return &Client{
		cfg: cfg,
		// Retries stay off: the shopper is waiting and the breaker owns
		// failure handling.
		http:    resty.New().SetTimeout(timeout).SetRetryCount(0),
		breaker: breaker,
	}
}

type CreateInput struct {
	TransactionID string
	OrderID       uint64
	AmountCents   int64

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	CallbackURL string
	WebhookURL  string
}

type CreateOutput struct {
	PaymentURL string
	Raw        []byte
}

// CreatePayment sends the payment request and maps the processor's reply to
// a typed outcome. It never guesses success: anything short of an explicit
// status=true with a redirect URL is a PaymentError.
func (c *Client) CreatePayment(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	metaData, err := json.Marshal(map[string]uint64{"orderId": input.OrderID})
	if err != nil {
		return nil, &PaymentError{Kind: PaymentErrorTransport, Message: "encode metadata", Err: err}
	}

	form := map[string]string{
		"trxnid":       input.TransactionID,
		"amount":       formatAmountCents(input.AmountCents),
		"cus_name":     input.CustomerName,
		"cus_phone":    input.CustomerPhone,
		"cus_email":    input.CustomerEmail,
		"meta_data":    string(metaData),
		"callback_url": input.CallbackURL,
		"webhook_url":  input.WebhookURL,
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.http.R().
			SetContext(ctx).
			SetAuthToken(c.cfg.APIToken).
			SetFormData(form).
			Post(c.cfg.BaseURL + paymentRequestPath)
	})
	if err != nil {
		return nil, &PaymentError{Kind: PaymentErrorTransport, Message: "processor unreachable", Err: err}
	}

	resp := result.(*resty.Response)
	body := resp.Body()

	var payload struct {
		Status     *bool  `json:"status"`
		PaymentURL string `json:"paymentURL"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &PaymentError{
			Kind:    PaymentErrorMalformedResponse,
			Message: fmt.Sprintf("non-JSON reply: http status=%d", resp.StatusCode()),
			Err:     err,
		}
	}

	if payload.Status == nil {
		return nil, &PaymentError{Kind: PaymentErrorMalformedResponse, Message: "status flag missing from reply"}
	}
	if !*payload.Status {
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = "payment request declined"
		}
		return nil, &PaymentError{Kind: PaymentErrorDeclined, Message: message}
	}

	paymentURL := strings.TrimSpace(payload.PaymentURL)
	if paymentURL == "" {
		return nil, &PaymentError{Kind: PaymentErrorMalformedResponse, Message: "paymentURL missing from successful reply"}
	}

	return &CreateOutput{PaymentURL: paymentURL, Raw: body}, nil
}

type CallbackNotification struct {
	Status     CallbackStatus
	OrderID    uint64
	Raw        []byte
	ReceivedAt time.Time
}

// VerifyAndParseCallback authenticates an inbound delivery against the
// shared webhook secret and normalizes it. The webhook endpoint is reachable
// without platform auth, so the signature check is mandatory.
func (c *Client) VerifyAndParseCallback(payload []byte, signature string) (*CallbackNotification, error) {
	if strings.TrimSpace(c.cfg.WebhookSecret) == "" {
		return nil, &CallbackError{Kind: CallbackErrorUnauthenticated, Message: "webhook secret is not configured"}
	}
	if !verifySignature(payload, signature, c.cfg.WebhookSecret, c.cfg.SignatureToleranceSeconds) {
		return nil, &CallbackError{Kind: CallbackErrorUnauthenticated, Message: "invalid webhook signature"}
	}

	var body struct {
		Status *string `json:"status"`
		Meta   struct {
			OrderID interface{} `json:"orderId"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &CallbackError{Kind: CallbackErrorMalformed, Message: "body is not valid JSON"}
	}
	if body.Status == nil {
		return nil, &CallbackError{Kind: CallbackErrorMalformed, Message: "status field missing"}
	}

	orderID, ok := parseOrderID(body.Meta.OrderID)
	if !ok {
		return nil, &CallbackError{Kind: CallbackErrorMalformed, Message: "meta.orderId missing or invalid"}
	}

	return &CallbackNotification{
		Status:     normalizeStatus(*body.Status),
		OrderID:    orderID,
		Raw:        payload,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func normalizeStatus(raw string) CallbackStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return StatusSuccess
	case "failed", "failure":
		return StatusFailed
	case "pending":
		return StatusPending
	default:
		return StatusUnknown
	}
}

func parseOrderID(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint64(t), true
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		if err != nil || id == 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

func formatAmountCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// SignCallbackPayload builds the X-Epay-Signature header value for a payload
// at the given time.
func SignCallbackPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(ts + "." + string(payload)))
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(payload []byte, signatureHeader string, webhookSecret string, toleranceSeconds int64) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" {
		return false
	}

	parts := strings.Split(signatureHeader, ",")
	var ts string
	v1 := make([]string, 0, 1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			v1 = append(v1, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(v1) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-tsUnix > toleranceSeconds || tsUnix-now > toleranceSeconds {
		return false
	}

	signedPayload := []byte(ts + "." + string(payload))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write(signedPayload)
	expected := mac.Sum(nil)

	for _, sig := range v1 {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}

	return false
}
