package api

import (
	"net/http"
	"strings"

	"storefront-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthGuard
const (
	ctxUserID     = "user_id"
	ctxMerchantID = "merchant_id"
	ctxRole       = "role"
)

// AuthGuard verifies the bearer token and enforces the required role.
// Admins pass merchant-only guards too.
func AuthGuard(tokens *auth.Manager, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if claims.Role != requiredRole && claims.Role != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		if requiredRole == auth.RoleMerchant && claims.MerchantID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no merchant associated with account"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxMerchantID, claims.MerchantID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func merchantID(c *gin.Context) string {
	return c.GetString(ctxMerchantID)
}
