package middleware

import (
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after JWTAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			abortWithError(c, models.NewAuthenticationError("User not authenticated"))
			return
		}

		role, _ := c.Get(ContextUserRole)
		if userRole, ok := role.(string); !ok || userRole != requiredRole {
			abortWithError(c, models.NewAuthorizationError("Insufficient permissions"))
			return
		}

		c.Next()
	}
}
