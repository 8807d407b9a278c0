package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefront-service/internal/mercadopago"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentFetcher fetches the authoritative payment record from the gateway.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.Payment, error)
}

// Messenger delivers best-effort text notifications.
type Messenger interface {
	SendText(ctx context.Context, phone, message string) error
}

// NotificationLocker guards notification side effects against concurrent
// duplicate webhook deliveries for the same payment.
type NotificationLocker interface {
	AcquireNotificationLock(ctx context.Context, paymentID string) (bool, error)
}

// statusEventPublisher publishes payment reconciliation outcomes.
type statusEventPublisher interface {
	PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
}

// webhookStore is the slice of the store the webhook handler needs.
type webhookStore interface {
	GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus, mpPaymentID string) error
	MarkOrderConfirmed(ctx context.Context, orderID string) error
}

// WebhookService reconciles asynchronous payment notifications into order
// state. Deliveries are at-least-once, so everything here must tolerate
// re-running for a payment that was already reconciled.
type WebhookService struct {
	store     webhookStore
	gateway   PaymentFetcher
	messenger Messenger
	locks     NotificationLocker
	publisher statusEventPublisher
	logger    *zap.Logger
}

// NewWebhookService creates a new webhook reconciliation service
func NewWebhookService(
	store webhookStore,
	gateway PaymentFetcher,
	messenger Messenger,
	locks NotificationLocker,
	publisher statusEventPublisher,
) *WebhookService {
	return &WebhookService{
		store:     store,
		gateway:   gateway,
		messenger: messenger,
		locks:     locks,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// mapPaymentStatus maps a gateway payment status to the internal one.
// Unknown statuses stay pending: no change is assumed.
func mapPaymentStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "approved":
		return models.PaymentStatusPaid
	case "rejected", "cancelled", "charged_back":
		return models.PaymentStatusFailed
	case "refunded":
		return models.PaymentStatusRefunded
	default:
		return models.PaymentStatusPending
	}
}

// ProcessNotification handles one webhook delivery. The payload is only a
// pointer: amounts and status always come from the gateway lookup under
// the merchant's credential, never from the unauthenticated callback.
func (s *WebhookService) ProcessNotification(ctx context.Context, topic, paymentID, merchantID string) error {
	ctx, span := util.StartSpan(ctx, "WebhookService.ProcessNotification")
	defer span.End()

	if merchantID == "" {
		util.WebhooksReceivedTotal.WithLabelValues("missing_merchant").Inc()
		return fmt.Errorf("%w: merchantId is required", ErrValidation)
	}

	// The gateway sends other topics (merchant_order etc). Acknowledge
	// and ignore them so it stops redelivering.
	if topic != "payment" || paymentID == "" {
		util.WebhooksReceivedTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	s.logger.Info("Payment notification received",
		zap.String("merchant_id", merchantID),
		zap.String("payment_id", paymentID))

	merchant, err := s.store.GetMerchantByID(ctx, merchantID)
	if err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load merchant: %w", err)
	}
	if merchant == nil || !merchant.MPAccessToken.Valid || merchant.MPAccessToken.String == "" {
		util.WebhooksReceivedTotal.WithLabelValues("unknown_merchant").Inc()
		return fmt.Errorf("%w: merchant %s or its credential", ErrNotFound, merchantID)
	}

	payment, err := s.gateway.GetPayment(ctx, merchant.MPAccessToken.String, paymentID)
	if err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: payment lookup: %v", ErrUpstream, err)
	}

	orderID := payment.ExternalReference
	if orderID == "" {
		util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("payment %s carries no external reference", paymentID)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.MerchantID != merchantID {
		util.WebhooksReceivedTotal.WithLabelValues("unknown_order").Inc()
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	mapped := mapPaymentStatus(payment.Status)
	wasPaid := order.PaymentStatus == models.PaymentStatusPaid

	s.logger.Info("Reconciling payment",
		zap.String("order_id", orderID),
		zap.String("gateway_status", payment.Status),
		zap.String("status_detail", payment.StatusDetail),
		zap.String("mapped_status", mapped))

	if err := s.store.UpdatePaymentStatus(ctx, orderID, mapped, paymentID); err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	// Fulfillment only ever advances to confirmed on a paid outcome.
	// Other outcomes must not touch it, or manual dashboard edits would
	// be silently overwritten.
	if mapped == models.PaymentStatusPaid {
		if err := s.store.MarkOrderConfirmed(ctx, orderID); err != nil {
			util.WebhooksReceivedTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to confirm order: %w", err)
		}
		util.PaymentsApprovedTotal.Inc()

		if !wasPaid {
			s.notify(ctx, merchant, order, paymentID, payment.TransactionAmount)
		}
	}

	s.publishStatusChange(ctx, order, merchantID, mapped, paymentID, payment.TransactionAmount)

	util.WebhooksReceivedTotal.WithLabelValues("ok").Inc()
	return nil
}

// notify sends the paid-order messages to merchant and customer, at most
// once per payment. The redis lock covers concurrent duplicate deliveries
// that both observed payment_status != paid before writing.
func (s *WebhookService) notify(ctx context.Context, merchant *models.Merchant, order *models.Order, paymentID string, amount float64) {
	if s.locks != nil {
		acquired, err := s.locks.AcquireNotificationLock(ctx, paymentID)
		if err != nil {
			s.logger.Warn("Notification lock unavailable, sending anyway",
				zap.String("payment_id", paymentID), zap.Error(err))
		} else if !acquired {
			s.logger.Info("Notifications already sent for payment",
				zap.String("payment_id", paymentID))
			return
		}
	}

	rounded := int64(math.Round(amount))

	if number := merchant.ContactNumber(); number != "" {
		msg := fmt.Sprintf("🎉 ¡Nueva venta confirmada!\n\nPedido: #%s\nTotal: $%d",
			order.OrderNumber, rounded)
		if err := s.messenger.SendText(ctx, number, msg); err != nil {
			s.logger.Warn("Failed to notify merchant",
				zap.String("order_id", order.ID), zap.Error(err))
		} else {
			util.NotificationsSentTotal.WithLabelValues("merchant").Inc()
		}
	}

	if order.CustomerPhone.Valid && order.CustomerPhone.String != "" {
		name := "Cliente"
		if order.CustomerName.Valid && order.CustomerName.String != "" {
			name = order.CustomerName.String
		}
		msg := fmt.Sprintf("Hola %s, ¡tu pedido #%s ha sido confirmado! 🚀\nPronto lo prepararemos para ti.",
			name, order.OrderNumber)
		if err := s.messenger.SendText(ctx, order.CustomerPhone.String, msg); err != nil {
			s.logger.Warn("Failed to notify customer",
				zap.String("order_id", order.ID), zap.Error(err))
		} else {
			util.NotificationsSentTotal.WithLabelValues("customer").Inc()
		}
	}
}

func (s *WebhookService) publishStatusChange(ctx context.Context, order *models.Order, merchantID, status, paymentID string, amount float64) {
	if s.publisher == nil {
		return
	}
	event := &models.PaymentStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		MerchantID:    merchantID,
		PaymentStatus: status,
		MPPaymentID:   paymentID,
		AmountUYU:     int64(math.Round(amount)),
	}
	if err := s.publisher.PublishPaymentStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment status event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}
