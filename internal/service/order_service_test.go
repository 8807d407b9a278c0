package service

import (
	"strings"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSubtotal(t *testing.T) {
	items := []OrderItemRequest{
		{ProductID: "p1", ProductName: "Chivito", UnitPriceUYU: 450, Quantity: 1},
		{ProductID: "p2", ProductName: "Refresco", UnitPriceUYU: 85, Quantity: 2},
	}

	assert.Equal(t, int64(620), calculateSubtotal(items))
}

func TestCalculateSubtotalEmpty(t *testing.T) {
	assert.Equal(t, int64(0), calculateSubtotal(nil))
}

func TestNewOrderNumberFormat(t *testing.T) {
	number := newOrderNumber(time.Now())

	parts := strings.Split(number, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 4)
	assert.Equal(t, strings.ToUpper(number), number)
}

func TestNewOrderNumberSortable(t *testing.T) {
	earlier := newOrderNumber(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := newOrderNumber(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	// Timestamps in the same base36 width compare lexicographically.
	assert.Less(t, strings.Split(earlier, "-")[1], strings.Split(later, "-")[1])
}

func TestFulfillmentTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to confirmed", models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{"confirmed to preparing", models.OrderStatusConfirmed, models.OrderStatusPreparing, true},
		{"preparing to ready", models.OrderStatusPreparing, models.OrderStatusReady, true},
		{"ready to delivering", models.OrderStatusReady, models.OrderStatusDelivering, true},
		{"delivering to delivered", models.OrderStatusDelivering, models.OrderStatusDelivered, true},
		{"pending to cancelled", models.OrderStatusPending, models.OrderStatusCancelled, true},
		{"delivering to cancelled", models.OrderStatusDelivering, models.OrderStatusCancelled, true},
		{"same status is idempotent", models.OrderStatusPreparing, models.OrderStatusPreparing, true},
		{"no skipping ahead", models.OrderStatusPending, models.OrderStatusReady, false},
		{"no going backwards", models.OrderStatusReady, models.OrderStatusConfirmed, false},
		{"delivered is terminal", models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{"cancelled is terminal", models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, models.CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateCreateOrder(t *testing.T) {
	valid := func() *CreateOrderRequest {
		return &CreateOrderRequest{
			MerchantID: "m1",
			Items: []OrderItemRequest{
				{ProductID: "p1", ProductName: "Milanesa", UnitPriceUYU: 300, Quantity: 1},
			},
			Customer:        CustomerInfo{Name: "Ana", Phone: "099123456"},
			DeliveryCostUYU: 80,
			PaymentMethod:   models.PaymentMethodMercadoPago,
		}
	}

	assert.NoError(t, validateCreateOrder(valid()))

	noItems := valid()
	noItems.Items = nil
	assert.ErrorIs(t, validateCreateOrder(noItems), ErrValidation)

	negativePrice := valid()
	negativePrice.Items[0].UnitPriceUYU = -1
	assert.ErrorIs(t, validateCreateOrder(negativePrice), ErrValidation)

	zeroQuantity := valid()
	zeroQuantity.Items[0].Quantity = 0
	assert.ErrorIs(t, validateCreateOrder(zeroQuantity), ErrValidation)

	negativeDelivery := valid()
	negativeDelivery.DeliveryCostUYU = -5
	assert.ErrorIs(t, validateCreateOrder(negativeDelivery), ErrValidation)

	badMethod := valid()
	badMethod.PaymentMethod = "bitcoin"
	assert.ErrorIs(t, validateCreateOrder(badMethod), ErrValidation)

	noPhone := valid()
	noPhone.Customer.Phone = ""
	assert.ErrorIs(t, validateCreateOrder(noPhone), ErrValidation)
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, models.ValidPaymentStatus(models.PaymentStatusPaid))
	assert.True(t, models.ValidPaymentStatus(models.PaymentStatusRefunded))
	assert.False(t, models.ValidPaymentStatus("approved"))
}
