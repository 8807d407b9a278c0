package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"storefront-service/internal/mercadopago"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckoutStore struct {
	merchant *models.Merchant
	order    *models.Order
	items    []models.OrderItem

	preferenceIDs map[string]string
}

func (f *fakeCheckoutStore) GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error) {
	if f.merchant != nil && f.merchant.ID == id {
		return f.merchant, nil
	}
	return nil, nil
}

func (f *fakeCheckoutStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if f.order != nil && f.order.ID == id {
		return f.order, nil
	}
	return nil, nil
}

func (f *fakeCheckoutStore) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return f.items, nil
}

func (f *fakeCheckoutStore) SetOrderPreferenceID(ctx context.Context, orderID, preferenceID string) error {
	if f.preferenceIDs == nil {
		f.preferenceIDs = map[string]string{}
	}
	f.preferenceIDs[orderID] = preferenceID
	return nil
}

type fakePreferenceCreator struct {
	pref  *mercadopago.Preference
	err   error
	calls []*mercadopago.PreferenceRequest
}

func (f *fakePreferenceCreator) CreatePreference(ctx context.Context, accessToken string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	f.calls = append(f.calls, req)
	return f.pref, f.err
}

func checkoutFixtures() (*fakeCheckoutStore, *fakePreferenceCreator) {
	store := &fakeCheckoutStore{
		merchant: &models.Merchant{
			ID:            "merchant-1",
			Currency:      "UYU",
			MPAccessToken: sql.NullString{String: "APP_USR-token", Valid: true},
		},
		order: &models.Order{
			ID:              "order-1",
			MerchantID:      "merchant-1",
			DeliveryCostUYU: 80,
		},
		items: []models.OrderItem{
			{
				ProductID:    sql.NullString{String: "p1", Valid: true},
				ProductName:  "Chivito",
				UnitPriceUYU: 450,
				Quantity:     1,
			},
			{
				ProductID:    sql.NullString{String: "p2", Valid: true},
				ProductName:  "Refresco",
				UnitPriceUYU: 85,
				Quantity:     2,
			},
		},
	}
	gateway := &fakePreferenceCreator{
		pref: &mercadopago.Preference{
			ID:        "pref-1",
			InitPoint: "https://www.mercadopago.com.uy/init/pref-1",
		},
	}
	return store, gateway
}

func TestInitiateCheckout(t *testing.T) {
	store, gateway := checkoutFixtures()
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	result, err := svc.InitiateCheckout(context.Background(), "order-1", "merchant-1")
	require.NoError(t, err)

	assert.Equal(t, "pref-1", result.PreferenceID)
	assert.Equal(t, "https://www.mercadopago.com.uy/init/pref-1", result.InitPoint)
	assert.Equal(t, "pref-1", store.preferenceIDs["order-1"])

	require.Len(t, gateway.calls, 1)
	req := gateway.calls[0]
	assert.Equal(t, "order-1", req.ExternalReference)

	// Product lines plus one delivery line.
	require.Len(t, req.Items, 3)
	assert.Equal(t, "Costo de envío", req.Items[2].Title)
	assert.Equal(t, int64(80), req.Items[2].UnitPrice)
	assert.Equal(t, 1, req.Items[2].Quantity)

	assert.Contains(t, req.BackURLs.Success, "orderId=order-1")
	assert.Contains(t, req.NotificationURL, "merchantId=merchant-1")
}

func TestInitiateCheckoutNoDeliveryLine(t *testing.T) {
	store, gateway := checkoutFixtures()
	store.order.DeliveryCostUYU = 0
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	_, err := svc.InitiateCheckout(context.Background(), "order-1", "merchant-1")
	require.NoError(t, err)

	require.Len(t, gateway.calls, 1)
	assert.Len(t, gateway.calls[0].Items, 2)
}

func TestInitiateCheckoutMerchantNotConfigured(t *testing.T) {
	store, gateway := checkoutFixtures()
	store.merchant.MPAccessToken = sql.NullString{}
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	_, err := svc.InitiateCheckout(context.Background(), "order-1", "merchant-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, gateway.calls)
}

func TestInitiateCheckoutDemoMerchant(t *testing.T) {
	store, gateway := checkoutFixtures()
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	result, err := svc.InitiateCheckout(context.Background(), "order-1", models.DemoMerchantID)
	require.NoError(t, err)

	assert.Equal(t, "demo-preference-id", result.PreferenceID)
	assert.Contains(t, result.InitPoint, "/checkout/success?orderId=order-1")
	assert.Empty(t, gateway.calls)
}

func TestInitiateCheckoutWrongTenant(t *testing.T) {
	store, gateway := checkoutFixtures()
	store.order.MerchantID = "merchant-other"
	store.merchant.ID = "merchant-1"
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	_, err := svc.InitiateCheckout(context.Background(), "order-1", "merchant-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, gateway.calls)
}

func TestInitiateCheckoutGatewayFailure(t *testing.T) {
	store, gateway := checkoutFixtures()
	gateway.pref = nil
	gateway.err = errors.New("gateway down")
	svc := NewCheckoutService(store, gateway, "https://tienda.example")

	_, err := svc.InitiateCheckout(context.Background(), "order-1", "merchant-1")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Empty(t, store.preferenceIDs)
}
