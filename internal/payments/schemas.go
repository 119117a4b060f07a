package payments

import "time"

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status string `json:"status" validate:"required,oneof=ok error" description:"Health status" example:"ok" examples:"ok,error"`
}

// PaymentData identifies the payment an event refers to.
type PaymentData struct {
	PaymentID  string  `json:"payment_id" validate:"required" description:"Unique identifier for the payment" example:"pay_1234567890"`
	Amount     float64 `json:"amount" validate:"required,gt=0" description:"Payment amount in cents" example:"2500"`
	Currency   string  `json:"currency" validate:"required,len=3" description:"ISO 4217 currency code" example:"USD"`
	CustomerID string  `json:"customer_id" validate:"required" description:"Customer identifier" example:"cust_abc123"`
}

// PaymentEvent is the body of the payment webhook.
type PaymentEvent struct {
	Event     string      `json:"event" validate:"required,oneof=payment.completed payment.failed" description:"The type of payment event" example:"payment.completed"`
	Data      PaymentData `json:"data" validate:"required"`
	Timestamp time.Time   `json:"timestamp" validate:"required" description:"ISO 8601 timestamp of when the event occurred" example:"2023-01-01T12:00:00Z"`
}

// RefundEvent is the body of the refund webhook.
type RefundEvent struct {
	Event    string  `json:"event" validate:"required,oneof=refund.processed"`
	RefundID string  `json:"refund_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required"`
}

// ErrorResponse is returned for rejected payloads.
type ErrorResponse struct {
	Error   string `json:"error" validate:"required"`
	Message string `json:"message" validate:"required"`
}
