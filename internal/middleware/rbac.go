package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
	"github.com/resolveit/complaints-api/pkg/response"
)

// RequireRoles allows the request through when the principal carries any of
// the given roles. Authorization tests the role set, not a single role slot.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
