package api

import (
	"errors"
	"net/http"

	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

// mercadopagoWebhook handles Mercado Pago payment notifications. The
// gateway retries anything that is not a 2xx, so only client mistakes
// return 4xx; transient failures return 500 to request a redelivery.
func (h *Handler) mercadopagoWebhook(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}
	paymentID := c.Query("id")
	if paymentID == "" {
		paymentID = c.Query("data.id")
	}
	merchantID := c.Query("merchantId")

	err := h.webhookService.ProcessNotification(c.Request.Context(), topic, paymentID, merchantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
