package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService creates and mutates orders
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a storefront checkout submission
type CreateOrderRequest struct {
	MerchantID      string             `json:"merchant_id" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Customer        CustomerInfo       `json:"customer" binding:"required"`
	DeliveryCostUYU int64              `json:"delivery_cost_uyu" binding:"min=0"`
	PaymentMethod   string             `json:"payment_method" binding:"required"`
}

// OrderItemRequest carries the product snapshot taken in the cart.
// The snapshot, not the current product row, is what gets persisted.
type OrderItemRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	ProductName     string `json:"product_name" binding:"required"`
	ProductImageURL string `json:"product_image_url,omitempty"`
	UnitPriceUYU    int64  `json:"unit_price_uyu" binding:"min=0"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	Notes           string `json:"notes,omitempty"`
}

// CustomerInfo carries the buyer's contact details
type CustomerInfo struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Barrio  string `json:"barrio,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// CreateOrder validates the request, persists the customer upsert, order
// and items in one transaction, and publishes the created event that
// drives the asynchronous customer-stats increment.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validateCreateOrder(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	if req.MerchantID == models.DemoMerchantID {
		return demoOrder(req), nil
	}

	merchant, err := s.store.GetMerchantByID(ctx, req.MerchantID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to load merchant: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: merchant %s", ErrNotFound, req.MerchantID)
	}

	subtotal := calculateSubtotal(req.Items)
	now := time.Now()

	order := &models.Order{
		ID:              uuid.New().String(),
		MerchantID:      req.MerchantID,
		OrderNumber:     newOrderNumber(now),
		SubtotalUYU:     subtotal,
		DeliveryCostUYU: req.DeliveryCostUYU,
		DiscountUYU:     0,
		TotalUYU:        subtotal + req.DeliveryCostUYU,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: nullString(req.Customer.Address),
		DeliveryBarrio:  nullString(req.Customer.Barrio),
		DeliveryNotes:   nullString(req.Customer.Notes),
		CustomerName:    nullString(req.Customer.Name),
		CustomerPhone:   nullString(req.Customer.Phone),
		CustomerEmail:   nullString(req.Customer.Email),
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ID:              uuid.New().String(),
			ProductID:       nullString(item.ProductID),
			ProductName:     item.ProductName,
			ProductImageURL: nullString(item.ProductImageURL),
			UnitPriceUYU:    item.UnitPriceUYU,
			Quantity:        item.Quantity,
			TotalUYU:        item.UnitPriceUYU * int64(item.Quantity),
			Notes:           nullString(item.Notes),
		})
	}

	customer := &models.Customer{
		ID:         uuid.New().String(),
		MerchantID: req.MerchantID,
		Name:       req.Customer.Name,
		Phone:      req.Customer.Phone,
		Email:      nullString(req.Customer.Email),
		Address:    nullString(req.Customer.Address),
		Barrio:     nullString(req.Customer.Barrio),
		Notes:      nullString(req.Customer.Notes),
	}

	if err := s.store.CreateOrderWithItems(ctx, order, items, customer); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("merchant_id", order.MerchantID),
		zap.Int64("total_uyu", order.TotalUYU))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: now,
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		MerchantID:  order.MerchantID,
		CustomerID:  customer.ID,
		TotalUYU:    order.TotalUYU,
		Items:       eventItems(items),
	}

	// Customer stats are incremented by the stats worker; a publish
	// failure must not fail the checkout response.
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// UpdateOrderStatus validates the requested fulfillment transition and
// persists it. Force bypasses the state machine for manual admin
// correction. Timestamps stamp only on the transition edge.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, merchantID, orderID, newStatus string, force bool) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.ValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	if !force && !models.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s",
			ErrValidation, order.Status, newStatus)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", newStatus),
		zap.Bool("force", force))

	return s.store.GetOrderByID(ctx, orderID)
}

// UpdatePaymentStatus writes the payment status independently of the
// fulfillment state, optionally recording the gateway payment id.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, merchantID, orderID, paymentStatus, mpPaymentID string) error {
	if !models.ValidPaymentStatus(paymentStatus) {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, paymentStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.MerchantID != merchantID {
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	return s.store.UpdatePaymentStatus(ctx, orderID, paymentStatus, mpPaymentID)
}

// GetOrder retrieves an order and its items
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListMerchantOrders retrieves a merchant's orders for the dashboard
func (s *OrderService) ListMerchantOrders(ctx context.Context, merchantID, status string, limit, offset int) ([]models.Order, error) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListMerchantOrders(ctx, merchantID, status, limit, offset)
}

// GetOrderByNumber retrieves an order by its human-facing number,
// scoped to the merchant.
func (s *OrderService) GetOrderByNumber(ctx context.Context, merchantID, orderNumber string) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByNumber(ctx, merchantID, orderNumber)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order %s", ErrNotFound, orderNumber)
	}

	items, err := s.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetCustomer retrieves one customer by phone, scoped to the merchant
func (s *OrderService) GetCustomer(ctx context.Context, merchantID, phone string) (*models.Customer, error) {
	customer, err := s.store.GetCustomerByPhone(ctx, merchantID, phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, phone)
	}
	return customer, nil
}

// ListCustomers retrieves a merchant's customers with their running stats
func (s *OrderService) ListCustomers(ctx context.Context, merchantID string, limit, offset int) ([]models.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListCustomers(ctx, merchantID, limit, offset)
}

func validateCreateOrder(req *CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.UnitPriceUYU < 0 {
			return fmt.Errorf("%w: negative unit price for %q", ErrValidation, item.ProductName)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity below 1 for %q", ErrValidation, item.ProductName)
		}
	}
	if req.DeliveryCostUYU < 0 {
		return fmt.Errorf("%w: negative delivery cost", ErrValidation)
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return fmt.Errorf("%w: customer name and phone are required", ErrValidation)
	}
	return nil
}

// calculateSubtotal sums unit price times quantity over all items
func calculateSubtotal(items []OrderItemRequest) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPriceUYU * int64(item.Quantity)
	}
	return subtotal
}

func eventItems(items []models.OrderItem) []models.OrderItemData {
	out := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderItemData{
			ProductID:    item.ProductID.String,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			UnitPriceUYU: item.UnitPriceUYU,
		})
	}
	return out
}

// demoOrder returns a synthetic order for the sandbox tenant without
// touching the database.
func demoOrder(req *CreateOrderRequest) *models.Order {
	subtotal := calculateSubtotal(req.Items)
	now := time.Now()
	return &models.Order{
		ID:              uuid.New().String(),
		MerchantID:      models.DemoMerchantID,
		OrderNumber:     fmt.Sprintf("DEMO-%03d", rand.Intn(1000)),
		SubtotalUYU:     subtotal,
		DeliveryCostUYU: req.DeliveryCostUYU,
		TotalUYU:        subtotal + req.DeliveryCostUYU,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		CustomerName:    nullString(req.Customer.Name),
		CustomerPhone:   nullString(req.Customer.Phone),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
