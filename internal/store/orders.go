package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// CreateOrderWithItems persists the customer upsert, the order, and its
// items as one transaction. Either everything lands or nothing does.
// The upserted customer id is written back onto the order.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, customer *models.Customer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if customer != nil {
		err = tx.GetContext(ctx, &customer.ID, `
			INSERT INTO customers (id, merchant_id, name, phone, email, address, barrio, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (merchant_id, phone) DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				address = EXCLUDED.address,
				barrio = EXCLUDED.barrio,
				notes = EXCLUDED.notes,
				updated_at = NOW()
			RETURNING id`,
			customer.ID, customer.MerchantID, customer.Name, customer.Phone,
			customer.Email, customer.Address, customer.Barrio, customer.Notes)
		if err != nil {
			return fmt.Errorf("failed to upsert customer: %w", err)
		}
		order.CustomerID = sql.NullString{String: customer.ID, Valid: true}
	}

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (id, merchant_id, customer_id, order_number,
			subtotal_uyu, delivery_cost_uyu, discount_uyu, total_uyu,
			status, payment_status, payment_method,
			delivery_address, delivery_barrio, delivery_notes,
			customer_name, customer_phone, customer_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING *`,
		order.ID, order.MerchantID, order.CustomerID, order.OrderNumber,
		order.SubtotalUYU, order.DeliveryCostUYU, order.DiscountUYU, order.TotalUYU,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.DeliveryAddress, order.DeliveryBarrio, order.DeliveryNotes,
		order.CustomerName, order.CustomerPhone, order.CustomerEmail)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name,
				product_image_url, unit_price_uyu, quantity, total_uyu, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			items[i].ID, items[i].OrderID, items[i].ProductID, items[i].ProductName,
			items[i].ProductImageURL, items[i].UnitPriceUYU, items[i].Quantity,
			items[i].TotalUYU, items[i].Notes)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber retrieves an order by its human-shareable number,
// scoped to a merchant
func (s *Store) GetOrderByNumber(ctx context.Context, merchantID, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE merchant_id = $1 AND order_number = $2", merchantID, orderNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at", orderID)
	return items, err
}

// ListMerchantOrders retrieves a merchant's orders, newest first,
// optionally filtered by fulfillment status
func (s *Store) ListMerchantOrders(ctx context.Context, merchantID, status string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if status != "" {
		err := s.db.SelectContext(ctx, &orders, `
			SELECT * FROM orders WHERE merchant_id = $1 AND status = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
			merchantID, status, limit, offset)
		return orders, err
	}
	err := s.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE merchant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		merchantID, limit, offset)
	return orders, err
}

// UpdateOrderStatus writes the fulfillment status. The confirmed_at and
// delivered_at stamps are set only on their transition edge: COALESCE
// keeps the first value when the same status is written again.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $1,
			confirmed_at = CASE WHEN $1 = 'confirmed' THEN COALESCE(confirmed_at, NOW()) ELSE confirmed_at END,
			delivered_at = CASE WHEN $1 = 'delivered' THEN COALESCE(delivered_at, NOW()) ELSE delivered_at END,
			updated_at = NOW()
		WHERE id = $2`,
		status, orderID)
	return err
}

// UpdatePaymentStatus writes the payment status independently of the
// fulfillment status, optionally recording the gateway payment id.
func (s *Store) UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus, mpPaymentID string) error {
	if mpPaymentID != "" {
		_, err := s.db.ExecContext(ctx,
			"UPDATE orders SET payment_status = $1, mp_payment_id = $2, updated_at = NOW() WHERE id = $3",
			paymentStatus, mpPaymentID, orderID)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2",
		paymentStatus, orderID)
	return err
}

// SetOrderPreferenceID records the gateway checkout preference on the order
func (s *Store) SetOrderPreferenceID(ctx context.Context, orderID, preferenceID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET mp_preference_id = $1, updated_at = NOW() WHERE id = $2",
		preferenceID, orderID)
	return err
}

// MarkOrderConfirmed advances fulfillment to confirmed, stamping
// confirmed_at only the first time.
func (s *Store) MarkOrderConfirmed(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = 'confirmed',
			confirmed_at = COALESCE(confirmed_at, NOW()),
			updated_at = NOW()
		WHERE id = $1`, orderID)
	return err
}

// IncrementCustomerStats bumps the cumulative order count and spend
func (s *Store) IncrementCustomerStats(ctx context.Context, customerID string, orderTotal int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE customers SET
			total_orders = total_orders + 1,
			total_spent_uyu = total_spent_uyu + $1,
			updated_at = NOW()
		WHERE id = $2`,
		orderTotal, customerID)
	return err
}

// GetCustomerByPhone retrieves a merchant's customer by phone
func (s *Store) GetCustomerByPhone(ctx context.Context, merchantID, phone string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c,
		"SELECT * FROM customers WHERE merchant_id = $1 AND phone = $2", merchantID, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers retrieves a merchant's customers, biggest spenders first
func (s *Store) ListCustomers(ctx context.Context, merchantID string, limit, offset int) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, `
		SELECT * FROM customers WHERE merchant_id = $1
		ORDER BY total_spent_uyu DESC LIMIT $2 OFFSET $3`,
		merchantID, limit, offset)
	return customers, err
}

// IsEventProcessed checks if a broker event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a broker event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
