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

type fakeWebhookStore struct {
	merchant *models.Merchant
	order    *models.Order

	paymentStatusUpdates []string
	confirmedOrders      []string
}

func (f *fakeWebhookStore) GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error) {
	if f.merchant != nil && f.merchant.ID == id {
		return f.merchant, nil
	}
	return nil, nil
}

func (f *fakeWebhookStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if f.order != nil && f.order.ID == id {
		return f.order, nil
	}
	return nil, nil
}

func (f *fakeWebhookStore) UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus, mpPaymentID string) error {
	f.paymentStatusUpdates = append(f.paymentStatusUpdates, paymentStatus)
	return nil
}

func (f *fakeWebhookStore) MarkOrderConfirmed(ctx context.Context, orderID string) error {
	f.confirmedOrders = append(f.confirmedOrders, orderID)
	return nil
}

type fakePaymentFetcher struct {
	payment *mercadopago.Payment
	err     error
	calls   int
}

func (f *fakePaymentFetcher) GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.Payment, error) {
	f.calls++
	return f.payment, f.err
}

type fakeMessenger struct {
	messages []string
	numbers  []string
}

func (f *fakeMessenger) SendText(ctx context.Context, phone, message string) error {
	f.numbers = append(f.numbers, phone)
	f.messages = append(f.messages, message)
	return nil
}

type fakeLocker struct {
	acquired bool
	err      error
}

func (f *fakeLocker) AcquireNotificationLock(ctx context.Context, paymentID string) (bool, error) {
	return f.acquired, f.err
}

type fakeStatusPublisher struct {
	events []*models.PaymentStatusChangedEvent
}

func (f *fakeStatusPublisher) PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	f.events = append(f.events, event)
	return nil
}

func webhookFixtures() (*fakeWebhookStore, *fakePaymentFetcher, *fakeMessenger, *fakeLocker, *fakeStatusPublisher) {
	store := &fakeWebhookStore{
		merchant: &models.Merchant{
			ID:            "merchant-1",
			Name:          "La Esquina",
			Whatsapp:      sql.NullString{String: "099111222", Valid: true},
			MPAccessToken: sql.NullString{String: "APP_USR-token", Valid: true},
		},
		order: &models.Order{
			ID:            "order-1",
			MerchantID:    "merchant-1",
			OrderNumber:   "ORD-ABC123-DEAD",
			PaymentStatus: models.PaymentStatusPending,
			CustomerName:  sql.NullString{String: "Ana", Valid: true},
			CustomerPhone: sql.NullString{String: "098333444", Valid: true},
		},
	}
	gateway := &fakePaymentFetcher{
		payment: &mercadopago.Payment{
			Status:            "approved",
			ExternalReference: "order-1",
			TransactionAmount: 700,
		},
	}
	return store, gateway, &fakeMessenger{}, &fakeLocker{acquired: true}, &fakeStatusPublisher{}
}

func TestProcessNotificationApproved(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-1")
	require.NoError(t, err)

	require.Len(t, store.paymentStatusUpdates, 1)
	assert.Equal(t, models.PaymentStatusPaid, store.paymentStatusUpdates[0])
	assert.Equal(t, []string{"order-1"}, store.confirmedOrders)

	// Merchant and customer each get one message.
	require.Len(t, messenger.messages, 2)
	assert.Contains(t, messenger.messages[0], "ORD-ABC123-DEAD")
	assert.Contains(t, messenger.messages[0], "$700")
	assert.Contains(t, messenger.messages[1], "Ana")
	assert.Equal(t, []string{"099111222", "098333444"}, messenger.numbers)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.PaymentStatusPaid, publisher.events[0].PaymentStatus)
	assert.Equal(t, int64(700), publisher.events[0].AmountUYU)
}

func TestProcessNotificationRedeliveryDoesNotRenotify(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	store.order.PaymentStatus = models.PaymentStatusPaid
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-1")
	require.NoError(t, err)

	// Reconciliation still runs, notifications do not.
	assert.Len(t, store.paymentStatusUpdates, 1)
	assert.Len(t, store.confirmedOrders, 1)
	assert.Empty(t, messenger.messages)
}

func TestProcessNotificationLockHeldElsewhere(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	locker.acquired = false
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"order-1"}, store.confirmedOrders)
	assert.Empty(t, messenger.messages)
}

func TestProcessNotificationRejected(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	gateway.payment.Status = "rejected"
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-1")
	require.NoError(t, err)

	require.Len(t, store.paymentStatusUpdates, 1)
	assert.Equal(t, models.PaymentStatusFailed, store.paymentStatusUpdates[0])

	// A failed payment never advances fulfillment or notifies anyone.
	assert.Empty(t, store.confirmedOrders)
	assert.Empty(t, messenger.messages)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.PaymentStatusFailed, publisher.events[0].PaymentStatus)
}

func TestProcessNotificationMissingMerchant(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, gateway.calls)
}

func TestProcessNotificationIgnoresOtherTopics(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "merchant_order", "123", "merchant-1")
	require.NoError(t, err)
	assert.Zero(t, gateway.calls)
	assert.Empty(t, store.paymentStatusUpdates)
}

func TestProcessNotificationUnknownMerchant(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-other")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, gateway.calls)
}

func TestProcessNotificationGatewayFailure(t *testing.T) {
	store, gateway, messenger, locker, publisher := webhookFixtures()
	gateway.payment = nil
	gateway.err = errors.New("boom")
	svc := NewWebhookService(store, gateway, messenger, locker, publisher)

	err := svc.ProcessNotification(context.Background(), "payment", "pay-1", "merchant-1")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Empty(t, store.paymentStatusUpdates)
}

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		gateway string
		want    string
	}{
		{"approved", models.PaymentStatusPaid},
		{"rejected", models.PaymentStatusFailed},
		{"cancelled", models.PaymentStatusFailed},
		{"charged_back", models.PaymentStatusFailed},
		{"refunded", models.PaymentStatusRefunded},
		{"in_process", models.PaymentStatusPending},
		{"", models.PaymentStatusPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapPaymentStatus(tt.gateway), "status %q", tt.gateway)
	}
}
