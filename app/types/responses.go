package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type GatewayInfoResponse struct {
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type InitiatePaymentResponse struct {
	TransactionID string `json:"trxnid"`
	PaymentURL    string `json:"paymentURL"`
}

type PaymentAttemptResponse struct {
	TransactionID string `json:"trxnid"`
	OrderID       uint64 `json:"orderId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PaymentURL    string `json:"paymentURL,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type WebhookAckResponse struct {
	Outcome string `json:"outcome"`
	OrderID uint64 `json:"orderId,omitempty"`
}
