package service

import (
	"context"
	"fmt"

	"storefront-service/internal/mercadopago"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// PreferenceCreator creates hosted-checkout sessions at the payment gateway.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, accessToken string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
}

// checkoutStore is the slice of the store the orchestrator needs.
type checkoutStore interface {
	GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	SetOrderPreferenceID(ctx context.Context, orderID, preferenceID string) error
}

// CheckoutService bridges an internal order to the gateway's hosted checkout
type CheckoutService struct {
	store      checkoutStore
	gateway    PreferenceCreator
	appBaseURL string
	logger     *zap.Logger
}

// NewCheckoutService creates a new checkout orchestrator
func NewCheckoutService(store checkoutStore, gateway PreferenceCreator, appBaseURL string) *CheckoutService {
	return &CheckoutService{
		store:      store,
		gateway:    gateway,
		appBaseURL: appBaseURL,
		logger:     util.GetLogger(),
	}
}

// CheckoutResult is what the storefront needs to redirect the buyer
type CheckoutResult struct {
	InitPoint    string `json:"init_point"`
	PreferenceID string `json:"preference_id"`
}

// InitiateCheckout builds a gateway preference for the order under the
// merchant's own credential and stores the preference id on the order.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, orderID, merchantID string) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.InitiateCheckout")
	defer span.End()

	if orderID == "" || merchantID == "" {
		return nil, fmt.Errorf("%w: order id and merchant id are required", ErrValidation)
	}

	if merchantID == models.DemoMerchantID {
		return &CheckoutResult{
			InitPoint:    fmt.Sprintf("%s/checkout/success?orderId=%s", s.appBaseURL, orderID),
			PreferenceID: "demo-preference-id",
		}, nil
	}

	merchant, err := s.store.GetMerchantByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: merchant %s", ErrNotFound, merchantID)
	}
	if !merchant.MPAccessToken.Valid || merchant.MPAccessToken.String == "" {
		return nil, fmt.Errorf("%w: merchant %s has no Mercado Pago credential", ErrNotConfigured, merchantID)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	orderItems, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	currency := merchant.Currency
	if currency == "" {
		currency = "UYU"
	}

	items := make([]mercadopago.PreferenceItem, 0, len(orderItems)+1)
	for _, item := range orderItems {
		items = append(items, mercadopago.PreferenceItem{
			ID:         item.ProductID.String,
			Title:      item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPriceUYU,
			CurrencyID: currency,
			PictureURL: item.ProductImageURL.String,
		})
	}
	if order.DeliveryCostUYU > 0 {
		items = append(items, mercadopago.PreferenceItem{
			ID:         "delivery",
			Title:      "Costo de envío",
			Quantity:   1,
			UnitPrice:  order.DeliveryCostUYU,
			CurrencyID: currency,
		})
	}

	prefReq := &mercadopago.PreferenceRequest{
		Items:             items,
		ExternalReference: order.ID,
		BackURLs: mercadopago.BackURLs{
			Success: fmt.Sprintf("%s/checkout/success?orderId=%s", s.appBaseURL, orderID),
			Failure: fmt.Sprintf("%s/checkout/failure?orderId=%s", s.appBaseURL, orderID),
			Pending: fmt.Sprintf("%s/checkout/pending?orderId=%s", s.appBaseURL, orderID),
		},
		AutoReturn: "approved",
		// The gateway callback is not tenant-scoped on its own, so the
		// notification URL carries the merchant id.
		NotificationURL: fmt.Sprintf("%s/api/webhooks/mercadopago?merchantId=%s", s.appBaseURL, merchantID),
	}

	pref, err := s.gateway.CreatePreference(ctx, merchant.MPAccessToken.String, prefReq)
	if err != nil {
		util.CheckoutFailedTotal.Inc()
		return nil, fmt.Errorf("%w: create preference: %v", ErrUpstream, err)
	}

	if err := s.store.SetOrderPreferenceID(ctx, orderID, pref.ID); err != nil {
		return nil, fmt.Errorf("failed to store preference id: %w", err)
	}

	util.CheckoutPreferencesTotal.Inc()
	s.logger.Info("Checkout preference created",
		zap.String("order_id", orderID),
		zap.String("merchant_id", merchantID),
		zap.String("preference_id", pref.ID))

	return &CheckoutResult{InitPoint: pref.InitPoint, PreferenceID: pref.ID}, nil
}
