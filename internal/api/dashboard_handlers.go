package api

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

// getOwnMerchant returns the authenticated merchant's profile
func (h *Handler) getOwnMerchant(c *gin.Context) {
	merchant, err := h.merchantService.GetMerchant(c.Request.Context(), merchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

// updateSettings mutates the authenticated merchant's profile
func (h *Handler) updateSettings(c *gin.Context) {
	var req service.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	merchant, err := h.merchantService.UpdateSettings(c.Request.Context(), merchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

// listOrders lists the merchant's orders, optionally filtered by status
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListMerchantOrders(
		c.Request.Context(),
		merchantID(c),
		c.Query("status"),
		queryInt(c, "limit", 50),
		queryInt(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Force  bool   `json:"force"`
}

// updateOrderStatus advances an order through the fulfillment flow
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), merchantID(c), c.Param("id"), req.Status, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// updatePaymentStatus records a manual payment outcome (cash, transfer)
func (h *Handler) updatePaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.orderService.UpdatePaymentStatus(c.Request.Context(), merchantID(c), c.Param("id"), req.PaymentStatus, ""); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// getOrderByNumber finds an order by its human-facing number
func (h *Handler) getOrderByNumber(c *gin.Context) {
	order, items, err := h.orderService.GetOrderByNumber(c.Request.Context(), merchantID(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// getCustomer finds a customer by phone
func (h *Handler) getCustomer(c *gin.Context) {
	customer, err := h.orderService.GetCustomer(c.Request.Context(), merchantID(c), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// listCustomers lists the merchant's customers with their running stats
func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.orderService.ListCustomers(
		c.Request.Context(),
		merchantID(c),
		queryInt(c, "limit", 50),
		queryInt(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// listProducts lists the merchant's full product set
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), merchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// createProduct creates a product
func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), merchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// updateProduct mutates a product
func (h *Handler) updateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), merchantID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct removes a product
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), merchantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// listCategories lists the merchant's categories
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context(), merchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// createCategory creates a category
func (h *Handler) createCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), merchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// updateCategory mutates a category
func (h *Handler) updateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.UpdateCategory(c.Request.Context(), merchantID(c), c.Param("id"), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// deleteCategory removes a category
func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), merchantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// listDeliveryZones lists the merchant's delivery zones
func (h *Handler) listDeliveryZones(c *gin.Context) {
	zones, err := h.catalogService.ListDeliveryZones(c.Request.Context(), merchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery_zones": zones})
}

// createDeliveryZone creates a delivery zone
func (h *Handler) createDeliveryZone(c *gin.Context) {
	var req service.ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	zone, err := h.catalogService.CreateDeliveryZone(c.Request.Context(), merchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// updateDeliveryZone mutates a delivery zone
func (h *Handler) updateDeliveryZone(c *gin.Context) {
	var req service.ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.UpdateDeliveryZone(c.Request.Context(), merchantID(c), c.Param("id"), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// deleteDeliveryZone removes a delivery zone
func (h *Handler) deleteDeliveryZone(c *gin.Context) {
	if err := h.catalogService.DeleteDeliveryZone(c.Request.Context(), merchantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
