// server/internal/geocode/geocode.go
package geocode

import (
	"context"
	"strings"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

// Resolver turns a free-form address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (models.Coordinates, error)
}

// Normalize collapses runs of whitespace so equal addresses share a cache key.
func Normalize(address string) string {
	return strings.Join(strings.Fields(address), " ")
}

// Unavailable is used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Resolve(context.Context, string) (models.Coordinates, error) {
	return models.Coordinates{}, apperrors.ErrGeocodeUnavailable
}
