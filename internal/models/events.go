package models

import "time"

// Event types
const (
	EventTypeOrderCreated         = "ORDER_CREATED"
	EventTypePaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published after an order and its items are persisted.
// The stats worker consumes it to bump the customer's cumulative counters.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	MerchantID  string          `json:"merchant_id"`
	CustomerID  string          `json:"customer_id,omitempty"`
	TotalUYU    int64           `json:"total_uyu"`
	Items       []OrderItemData `json:"items"`
}

// PaymentStatusChangedEvent is published whenever webhook reconciliation
// lands a new payment status. Consumed by external integrations.
type PaymentStatusChangedEvent struct {
	BaseEvent
	OrderID       string `json:"order_id"`
	MerchantID    string `json:"merchant_id"`
	PaymentStatus string `json:"payment_status"`
	MPPaymentID   string `json:"mp_payment_id,omitempty"`
	AmountUYU     int64  `json:"amount_uyu"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID    string `json:"product_id,omitempty"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	UnitPriceUYU int64  `json:"unit_price_uyu"`
}
