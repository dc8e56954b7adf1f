package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
)

// RequireAdmin gates a route on the admin role. Requires JWTAuth first.
// This only guards the admin surface; action-level role rules live in the
// transition table, not here.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorRole(c) != domain.RoleAdmin {
			common.ErrorResponse(c, http.StatusForbidden, "Admin role required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
