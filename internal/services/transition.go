// server/internal/services/transition.go
package services

import (
	"fmt"
	"time"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

// ApplyStatus computes the update that moves s to target at time now.
//
// Any of the three statuses may be set directly, backwards included.
// transitDate is stamped the first time the shipment reaches in_transit or
// beyond and deliveryDate the first time it reaches delivered. Dates are never
// cleared or moved once set. now is clamped so that
// createdAt <= transitDate <= deliveryDate holds even with a skewed clock.
func ApplyStatus(s *models.Shipment, target models.ShipmentStatus, now time.Time) (models.ShipmentUpdate, error) {
	if !target.Valid() {
		return models.ShipmentUpdate{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, target)
	}
	if now.Before(s.CreatedAt) {
		now = s.CreatedAt
	}

	u := models.ShipmentUpdate{Status: &target}

	transit := s.TransitDate
	if target.Rank() >= models.StatusInTransit.Rank() && transit == nil {
		t := now
		u.TransitDate = &t
		transit = &t
	}
	if target == models.StatusDelivered && s.DeliveryDate == nil {
		t := now
		if transit != nil && t.Before(*transit) {
			t = *transit
		}
		u.DeliveryDate = &t
	}
	return u, nil
}
