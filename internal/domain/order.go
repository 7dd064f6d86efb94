package domain

import "time"

// OrderStatus is the server-authoritative order state.
// created → verified | failed, both terminal. "submitted" exists only as a
// client-side label and is never persisted.
type OrderStatus string

const (
	OrderCreated  OrderStatus = "created"
	OrderVerified OrderStatus = "verified"
	OrderFailed   OrderStatus = "failed"
	OrderExpired  OrderStatus = "expired"
)

// SettlementCurrency is the gateway settlement currency; all persisted
// amounts are minor units of it.
const SettlementCurrency = "INR"

// Order is a provider-registered intent to charge a fixed amount.
// PK: order_id (the provider-issued identifier, globally unique and immutable).
type Order struct {
	OrderID        string      `json:"id" dynamodbav:"order_id"`
	Amount         int64       `json:"amount" dynamodbav:"amount"` // settlement minor units
	Currency       string      `json:"currency" dynamodbav:"currency"`
	PackageID      string      `json:"package_id" dynamodbav:"package_id"`
	GatewayKeyID   string      `json:"key_id" dynamodbav:"gateway_key_id"`
	Receipt        string      `json:"receipt" dynamodbav:"receipt"`
	SubjectID      string      `json:"subject_id,omitempty" dynamodbav:"subject_id,omitempty"`
	IdempotencyKey string      `json:"-" dynamodbav:"idempotency_key,omitempty"`
	Status         OrderStatus `json:"status" dynamodbav:"status"`
	CreatedAt      time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// Terminal reports whether no further status transitions are valid.
func (o *Order) Terminal() bool {
	return o.Status == OrderVerified || o.Status == OrderFailed || o.Status == OrderExpired
}
