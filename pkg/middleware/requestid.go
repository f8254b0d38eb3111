package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Key types for context values
type contextKey string

const (
	// RequestIDKey is the key for request ID values in contexts
	RequestIDKey contextKey = "requestID"
	// UserIDKey is the key for user ID values in contexts
	UserIDKey contextKey = "userID"
)

// RequestContext copies the request id assigned by the logger middleware
// into the request's context.Context for code below the handlers.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requestID := c.GetString("requestID"); requestID != "" {
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey, requestID))
		}
		c.Next()
	}
}

// SetUserID records the authenticated user on both the gin and request contexts.
func SetUserID(c *gin.Context, userID string) {
	c.Set(string(UserIDKey), userID)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), UserIDKey, userID))
}

// GetRequestID extracts the request ID from a context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

// GetUserID extracts the authenticated user ID from a context
func GetUserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
