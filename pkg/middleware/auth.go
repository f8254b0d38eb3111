package middleware

import (
	"strings"

	"character-image-generator/backend/pkg/errors"
	"character-image-generator/backend/pkg/jwt"
	"character-image-generator/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding *jwt.Claims
const ClaimsKey = "claims"

// RequireAuth checks that the request carries a valid bearer token and
// stores its claims and user id on the context.
func RequireAuth(svc *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Authorization header is required"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := svc.ValidateToken(token)
		if err != nil {
			log.Warn("Invalid JWT token", "error", err.Error(), "path", c.Request.URL.Path)
			c.Error(errors.NewUnauthorizedError(errors.CodeInvalidToken, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		SetUserID(c, claims.UserID)
		c.Next()
	}
}
