package models

import (
	"database/sql"
	"time"
)

// DemoMerchantID activates the sandbox path in order creation and checkout.
// It is the nil UUID and can never collide with a real tenant id.
const DemoMerchantID = "00000000-0000-0000-0000-000000000000"

// Order statuses (fulfillment state machine)
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusPreparing  = "preparing"
	OrderStatusReady      = "ready"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses, independent of fulfillment
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment methods
const (
	PaymentMethodMercadoPago = "mercadopago"
	PaymentMethodAbitab      = "abitab"
	PaymentMethodRedpagos    = "redpagos"
	PaymentMethodTransfer    = "transfer"
	PaymentMethodCash        = "cash"
)

// fulfillmentTransitions encodes the legal edges of the order state machine.
// Cancelled is reachable from every non-terminal state; delivered and
// cancelled are terminal.
var fulfillmentTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:      {OrderStatusDelivering, OrderStatusCancelled},
	OrderStatusDelivering: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ValidOrderStatus reports whether s names a known fulfillment status.
func ValidOrderStatus(s string) bool {
	_, ok := fulfillmentTransitions[s]
	return ok
}

// CanTransition reports whether the fulfillment state machine allows
// moving from one status to the next. Writing the same status again is
// allowed so status updates stay idempotent.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range fulfillmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidPaymentStatus reports whether s names a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether s names an accepted payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodMercadoPago, PaymentMethodAbitab, PaymentMethodRedpagos,
		PaymentMethodTransfer, PaymentMethodCash:
		return true
	}
	return false
}

// User is an auth identity. Merchants and platform admins both log in
// through the same table, distinguished by role.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Plan represents a subscription tier a merchant can be on.
type Plan struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Slug          string    `db:"slug" json:"slug"`
	PriceUYU      int64     `db:"price_uyu" json:"price_uyu"`
	MaxProducts   int       `db:"max_products" json:"max_products"`
	MaxCategories int       `db:"max_categories" json:"max_categories"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Merchant is the tenant root. All catalog and order rows hang off one merchant.
type Merchant struct {
	ID              string         `db:"id" json:"id"`
	UserID          sql.NullString `db:"user_id" json:"user_id,omitempty"`
	PlanID          sql.NullString `db:"plan_id" json:"plan_id,omitempty"`
	Name            string         `db:"name" json:"name"`
	Slug            string         `db:"slug" json:"slug"`
	Description     sql.NullString `db:"description" json:"description,omitempty"`
	Email           sql.NullString `db:"email" json:"email,omitempty"`
	Phone           sql.NullString `db:"phone" json:"phone,omitempty"`
	Whatsapp        sql.NullString `db:"whatsapp" json:"whatsapp,omitempty"`
	Barrio          sql.NullString `db:"barrio" json:"barrio,omitempty"`
	City            string         `db:"city" json:"city"`
	Currency        string         `db:"currency" json:"currency"`
	LogoURL         sql.NullString `db:"logo_url" json:"logo_url,omitempty"`
	PrimaryColor    string         `db:"primary_color" json:"primary_color"`
	SecondaryColor  string         `db:"secondary_color" json:"secondary_color"`
	MPAccessToken   sql.NullString `db:"mp_access_token" json:"-"`
	AcceptsCash     bool           `db:"accepts_cash" json:"accepts_cash"`
	AcceptsTransfer bool           `db:"accepts_transfer" json:"accepts_transfer"`
	AcceptsAbitab   bool           `db:"accepts_abitab" json:"accepts_abitab"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	IsVerified      bool           `db:"is_verified" json:"is_verified"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ContactNumber returns the number notifications should go to,
// preferring the dedicated WhatsApp number.
func (m *Merchant) ContactNumber() string {
	if m.Whatsapp.Valid && m.Whatsapp.String != "" {
		return m.Whatsapp.String
	}
	if m.Phone.Valid {
		return m.Phone.String
	}
	return ""
}

// Category groups products inside one merchant's catalog.
type Category struct {
	ID         string    `db:"id" json:"id"`
	MerchantID string    `db:"merchant_id" json:"merchant_id"`
	Name       string    `db:"name" json:"name"`
	Slug       string    `db:"slug" json:"slug"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Product belongs to exactly one merchant and optionally one category.
type Product struct {
	ID          string         `db:"id" json:"id"`
	MerchantID  string         `db:"merchant_id" json:"merchant_id"`
	CategoryID  sql.NullString `db:"category_id" json:"category_id,omitempty"`
	Name        string         `db:"name" json:"name"`
	Slug        string         `db:"slug" json:"slug"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	PriceUYU    int64          `db:"price_uyu" json:"price_uyu"`
	ImageURL    sql.NullString `db:"image_url" json:"image_url,omitempty"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	IsFeatured  bool           `db:"is_featured" json:"is_featured"`
	SortOrder   int            `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DeliveryZone is a barrio a merchant delivers to, with its cost.
type DeliveryZone struct {
	ID              string    `db:"id" json:"id"`
	MerchantID      string    `db:"merchant_id" json:"merchant_id"`
	Name            string    `db:"name" json:"name"`
	Barrio          string    `db:"barrio" json:"barrio"`
	DeliveryCostUYU int64     `db:"delivery_cost_uyu" json:"delivery_cost_uyu"`
	MinOrderUYU     int64     `db:"min_order_uyu" json:"min_order_uyu"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Customer is keyed by (merchant_id, phone) so returning buyers are
// upserted instead of duplicated. TotalOrders and TotalSpentUYU are
// maintained incrementally, never recomputed.
type Customer struct {
	ID            string         `db:"id" json:"id"`
	MerchantID    string         `db:"merchant_id" json:"merchant_id"`
	Name          string         `db:"name" json:"name"`
	Phone         string         `db:"phone" json:"phone"`
	Email         sql.NullString `db:"email" json:"email,omitempty"`
	Address       sql.NullString `db:"address" json:"address,omitempty"`
	Barrio        sql.NullString `db:"barrio" json:"barrio,omitempty"`
	Notes         sql.NullString `db:"notes" json:"notes,omitempty"`
	TotalOrders   int            `db:"total_orders" json:"total_orders"`
	TotalSpentUYU int64          `db:"total_spent_uyu" json:"total_spent_uyu"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Order is a customer order. Monetary fields always satisfy
// total = subtotal + delivery_cost - discount. Customer contact fields
// are copied onto the order so guest checkout works without a customer row.
type Order struct {
	ID              string         `db:"id" json:"id"`
	MerchantID      string         `db:"merchant_id" json:"merchant_id"`
	CustomerID      sql.NullString `db:"customer_id" json:"customer_id,omitempty"`
	OrderNumber     string         `db:"order_number" json:"order_number"`
	SubtotalUYU     int64          `db:"subtotal_uyu" json:"subtotal_uyu"`
	DeliveryCostUYU int64          `db:"delivery_cost_uyu" json:"delivery_cost_uyu"`
	DiscountUYU     int64          `db:"discount_uyu" json:"discount_uyu"`
	TotalUYU        int64          `db:"total_uyu" json:"total_uyu"`
	Status          string         `db:"status" json:"status"`
	PaymentStatus   string         `db:"payment_status" json:"payment_status"`
	PaymentMethod   string         `db:"payment_method" json:"payment_method"`
	MPPaymentID     sql.NullString `db:"mp_payment_id" json:"mp_payment_id,omitempty"`
	MPPreferenceID  sql.NullString `db:"mp_preference_id" json:"mp_preference_id,omitempty"`
	DeliveryAddress sql.NullString `db:"delivery_address" json:"delivery_address,omitempty"`
	DeliveryBarrio  sql.NullString `db:"delivery_barrio" json:"delivery_barrio,omitempty"`
	DeliveryNotes   sql.NullString `db:"delivery_notes" json:"delivery_notes,omitempty"`
	CustomerName    sql.NullString `db:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone   sql.NullString `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerEmail   sql.NullString `db:"customer_email" json:"customer_email,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	ConfirmedAt     sql.NullTime   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	DeliveredAt     sql.NullTime   `db:"delivered_at" json:"delivered_at,omitempty"`
}

// OrderItem is a denormalized snapshot of the product at purchase time.
// TotalUYU is always unit price times quantity.
type OrderItem struct {
	ID              string         `db:"id" json:"id"`
	OrderID         string         `db:"order_id" json:"order_id"`
	ProductID       sql.NullString `db:"product_id" json:"product_id,omitempty"`
	ProductName     string         `db:"product_name" json:"product_name"`
	ProductImageURL sql.NullString `db:"product_image_url" json:"product_image_url,omitempty"`
	UnitPriceUYU    int64          `db:"unit_price_uyu" json:"unit_price_uyu"`
	Quantity        int            `db:"quantity" json:"quantity"`
	TotalUYU        int64          `db:"total_uyu" json:"total_uyu"`
	Notes           sql.NullString `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// ProcessedEvent tracks consumed broker events for worker idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
