// server/internal/api/middleware/errors.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracking-api-server/internal/apperrors"
)

// DashboardPath is where clients send users who hit a permission error.
const DashboardPath = "/dashboard"

// AbortWithError renders err as {"error", "code"} with the status its kind maps to.
func AbortWithError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"error": err.Error(), "code": apperrors.Code(err)}

	switch {
	case status == http.StatusForbidden:
		body["redirect"] = DashboardPath
	case status == http.StatusInternalServerError:
		body["error"] = "internal server error"
	}
	if apperrors.Retryable(err) {
		body["retryable"] = true
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
