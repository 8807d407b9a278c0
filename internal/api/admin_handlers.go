package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminListMerchants lists all merchants for the admin panel
func (h *Handler) adminListMerchants(c *gin.Context) {
	merchants, err := h.merchantService.ListMerchants(
		c.Request.Context(),
		queryInt(c, "limit", 50),
		queryInt(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"merchants": merchants})
}

type flagRequest struct {
	Value bool `json:"value"`
}

// adminVerifyMerchant toggles the verification badge for a merchant
func (h *Handler) adminVerifyMerchant(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.merchantService.SetMerchantVerified(c.Request.Context(), c.Param("id"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// adminActivateMerchant toggles whether a merchant's storefront is live
func (h *Handler) adminActivateMerchant(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.merchantService.SetMerchantActive(c.Request.Context(), c.Param("id"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
