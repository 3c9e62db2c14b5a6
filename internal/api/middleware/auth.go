// server/internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shipment-tracking-api-server/internal/models"
	"shipment-tracking-api-server/internal/services"
)

const callerKey = "caller"

type TokenParser interface {
	Parse(token string) (models.Caller, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, caller models.Caller, op services.Operation) (models.Role, error)
}

// Authenticate verifies the bearer token and stores the caller in the context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": "unauthenticated"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format", "code": "unauthenticated"})
			return
		}

		caller, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "unauthenticated"})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// Authorize lets the request through only if the caller may perform op.
func Authorize(gate Authorizer, op services.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "caller not found in context", "code": "internal_error"})
			return
		}
		if _, err := gate.Authorize(c.Request.Context(), caller, op); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func CallerFrom(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}

// SetCaller is used by tests and by routes that authenticate another way.
func SetCaller(c *gin.Context, caller models.Caller) {
	c.Set(callerKey, caller)
}
