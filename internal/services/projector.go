// server/internal/services/projector.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

// MaxDriverOffset bounds the synthetic driver position, in degrees per axis.
const MaxDriverOffset = 0.025

const defaultGeocodeTimeout = 3 * time.Second

// Projector builds the map view of a shipment. There is no vehicle telemetry:
// while a shipment is in transit the driver is drawn at a random point near
// the destination, recomputed on every call and never stored.
type Projector struct {
	geocoder Geocoder
	timeout  time.Duration
	jitter   func() float64
}

func NewProjector(geocoder Geocoder, timeout time.Duration) *Projector {
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	return &Projector{geocoder: geocoder, timeout: timeout, jitter: rand.Float64}
}

func (p *Projector) offset() float64 {
	return (p.jitter() - 0.5) * 2 * MaxDriverOffset
}

// Project geocodes the destination and, for in-transit shipments, adds a
// synthetic driver marker with a path to the destination. Geocoding failures
// and timeouts come back as ErrGeocodeUnavailable.
func (p *Projector) Project(ctx context.Context, s *models.Shipment, driver *models.Driver) (*models.LocationView, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dest, err := p.geocoder.Resolve(ctx, s.Destination)
	if err != nil {
		if !errors.Is(err, apperrors.ErrGeocodeUnavailable) {
			err = fmt.Errorf("%w: %w", apperrors.ErrGeocodeUnavailable, err)
		}
		return nil, err
	}

	view := &models.LocationView{
		Destination: models.MapMarker{Label: "Destination", Position: dest},
	}
	if s.Status != models.StatusInTransit {
		return view, nil
	}

	dLat, dLng := p.offset(), p.offset()
	if dLat == 0 && dLng == 0 {
		dLat = MaxDriverOffset / 2
	}
	pos := models.Coordinates{Lat: dest.Lat + dLat, Lng: dest.Lng + dLng}

	label := "Driver"
	if driver != nil && driver.Name != "" {
		label = driver.Name
	}
	view.Driver = &models.MapMarker{Label: label, Position: pos, Synthetic: true}
	view.Path = []models.Coordinates{pos, dest}
	return view, nil
}
