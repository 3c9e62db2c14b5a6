// server/internal/apperrors/apperrors.go
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrValidation         = errors.New("validation failed")
	ErrIssuanceExhausted  = errors.New("tracking code issuance exhausted")
	ErrGeocodeUnavailable = errors.New("geocode unavailable")
	ErrConflict           = errors.New("concurrent modification")
	ErrPaymentRequired    = errors.New("payment confirmation required")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// ErrDuplicateTrackingCode is returned by the repository when the unique
	// trackingCode index rejects an insert. Services retry issuance on it.
	ErrDuplicateTrackingCode = errors.New("duplicate tracking code")
)

type mapping struct {
	err    error
	status int
	code   string
}

// order matters: the first match wins for errors that wrap several sentinels.
var mappings = []mapping{
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
	{ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{ErrValidation, http.StatusBadRequest, "validation_error"},
	{ErrPaymentRequired, http.StatusPaymentRequired, "payment_required"},
	{ErrConflict, http.StatusConflict, "conflict"},
	{ErrDuplicateTrackingCode, http.StatusConflict, "conflict"},
	{ErrIssuanceExhausted, http.StatusServiceUnavailable, "issuance_exhausted"},
	{ErrGeocodeUnavailable, http.StatusServiceUnavailable, "geocode_unavailable"},
	{ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// Code returns a stable machine-readable code for err.
func Code(err error) string {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return "internal_error"
}

// Retryable reports whether the caller may safely repeat the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrIssuanceExhausted) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrConflict)
}
