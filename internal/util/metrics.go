package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreatedTotal counts successfully created orders
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Total number of orders created",
	})

	// OrdersFailedTotal counts order creation failures by reason
	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	// CheckoutPreferencesTotal counts hosted-checkout sessions created
	CheckoutPreferencesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_preferences_total",
		Help: "Total number of checkout preferences created at the gateway",
	})

	// CheckoutFailedTotal counts gateway preference creation failures
	CheckoutFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_failed_total",
		Help: "Total number of failed checkout preference creations",
	})

	// PaymentsApprovedTotal counts payments reconciled as paid
	PaymentsApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_payments_approved_total",
		Help: "Total number of payments reconciled as approved",
	})

	// WebhooksReceivedTotal counts webhook deliveries by outcome
	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhooks_received_total",
		Help: "Total number of payment webhook deliveries processed",
	}, []string{"outcome"})

	// NotificationsSentTotal counts WhatsApp notifications by recipient kind
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notifications_sent_total",
		Help: "Total number of WhatsApp notifications sent",
	}, []string{"recipient"})

	// MerchantsRegisteredTotal counts merchant signups
	MerchantsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_merchants_registered_total",
		Help: "Total number of merchants registered",
	})

	// StorefrontCacheHits counts storefront views served from cache
	StorefrontCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cache_hits_total",
		Help: "Total number of storefront views served from the Redis cache",
	})

	// CustomerStatsUpdatedTotal counts async customer stat increments
	CustomerStatsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_customer_stats_updated_total",
		Help: "Total number of customer statistics updates applied by the worker",
	})

	// HTTPRequestDuration tracks HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// HTTPRequestsTotal counts HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
