package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/pkg/jwt"
)

// Context keys set by JWTAuth
const (
	ctxActorID  = "actorID"
	ctxUsername = "username"
	ctxRole     = "role"
)

// JWTAuth verifies the Bearer token and stores the actor's identity in the
// request context. The engine downstream trusts the role as stored here.
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Missing authorization header", nil)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set(ctxActorID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// GetActorID extracts the authenticated moderator's id from context
func GetActorID(c *gin.Context) string {
	if v, exists := c.Get(ctxActorID); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUsername extracts the authenticated moderator's username from context
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(ctxUsername); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetActorRole extracts the authenticated moderator's role from context
func GetActorRole(c *gin.Context) domain.Role {
	if v, exists := c.Get(ctxRole); exists {
		if s, ok := v.(string); ok {
			return domain.Role(s)
		}
	}
	return ""
}

// GetActor builds the pre-authenticated identity consumed by the queue
// engine
func GetActor(c *gin.Context) domain.ActorIdentity {
	return domain.ActorIdentity{
		ID:   GetActorID(c),
		Role: GetActorRole(c),
	}
}
