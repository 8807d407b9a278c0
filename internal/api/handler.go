package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService    *service.OrderService
	checkoutService *service.CheckoutService
	webhookService  *service.WebhookService
	merchantService *service.MerchantService
	catalogService  *service.CatalogService
	tokens          *auth.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	checkoutService *service.CheckoutService,
	webhookService *service.WebhookService,
	merchantService *service.MerchantService,
	catalogService *service.CatalogService,
	tokens *auth.Manager,
) *Handler {
	return &Handler{
		orderService:    orderService,
		checkoutService: checkoutService,
		webhookService:  webhookService,
		merchantService: merchantService,
		catalogService:  catalogService,
		tokens:          tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/storefront/:slug", h.getStorefront)
		api.GET("/plans", h.getPlans)

		api.POST("/orders", h.createOrder)
		api.GET("/orders/:id", h.getOrder)
		api.POST("/checkout", h.initiateCheckout)

		api.POST("/webhooks/mercadopago", h.mercadopagoWebhook)
		api.GET("/webhooks/mercadopago", h.mercadopagoWebhook)

		dashboard := api.Group("/dashboard")
		dashboard.Use(AuthGuard(h.tokens, auth.RoleMerchant))
		{
			dashboard.GET("/merchant", h.getOwnMerchant)
			dashboard.PUT("/settings", h.updateSettings)

			dashboard.GET("/orders", h.listOrders)
			dashboard.GET("/orders/number/:number", h.getOrderByNumber)
			dashboard.PUT("/orders/:id/status", h.updateOrderStatus)
			dashboard.PUT("/orders/:id/payment-status", h.updatePaymentStatus)
			dashboard.GET("/customers", h.listCustomers)
			dashboard.GET("/customers/:phone", h.getCustomer)

			dashboard.GET("/products", h.listProducts)
			dashboard.POST("/products", h.createProduct)
			dashboard.PUT("/products/:id", h.updateProduct)
			dashboard.DELETE("/products/:id", h.deleteProduct)

			dashboard.GET("/categories", h.listCategories)
			dashboard.POST("/categories", h.createCategory)
			dashboard.PUT("/categories/:id", h.updateCategory)
			dashboard.DELETE("/categories/:id", h.deleteCategory)

			dashboard.GET("/delivery-zones", h.listDeliveryZones)
			dashboard.POST("/delivery-zones", h.createDeliveryZone)
			dashboard.PUT("/delivery-zones/:id", h.updateDeliveryZone)
			dashboard.DELETE("/delivery-zones/:id", h.deleteDeliveryZone)
		}

		admin := api.Group("/admin")
		admin.Use(AuthGuard(h.tokens, auth.RoleAdmin))
		{
			admin.GET("/merchants", h.adminListMerchants)
			admin.PUT("/merchants/:id/verify", h.adminVerifyMerchant)
			admin.PUT("/merchants/:id/active", h.adminActivateMerchant)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultVal
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
