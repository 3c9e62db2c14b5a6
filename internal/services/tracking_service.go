// server/internal/services/tracking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/models"
)

const (
	DriverNotAssigned   = "Not Assigned"
	DriverUnknown       = "Unknown Driver"
	LocationUnavailable = "location unavailable"
)

type TrackingView struct {
	Shipment          *models.Shipment     `json:"shipment"`
	StatusText        string               `json:"statusText"`
	StatusDescription string               `json:"statusDescription"`
	DriverDisplay     string               `json:"driver"`
	Driver            *models.Driver       `json:"driverDetails,omitempty"`
	Location          *models.LocationView `json:"location,omitempty"`
	LocationMessage   string               `json:"locationMessage,omitempty"`
}

// TrackingService answers read-only lookups of a shipment's progress.
type TrackingService struct {
	shipments ShipmentRepository
	drivers   DriverRepository
	gate      *Gate
	projector *Projector
}

func NewTrackingService(shipments ShipmentRepository, drivers DriverRepository, gate *Gate, projector *Projector) *TrackingService {
	return &TrackingService{shipments: shipments, drivers: drivers, gate: gate, projector: projector}
}

// Lookup finds a shipment by tracking code. Only its owner or an admin may see it.
func (t *TrackingService) Lookup(ctx context.Context, caller models.Caller, code string) (*TrackingView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !models.IsTrackingCode(code) {
		return nil, fmt.Errorf("tracking code %q: %w", code, apperrors.ErrNotFound)
	}

	s, err := t.shipments.GetByTrackingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return t.view(ctx, caller, s)
}

func (t *TrackingService) ViewShipment(ctx context.Context, caller models.Caller, id string) (*TrackingView, error) {
	s, err := t.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.view(ctx, caller, s)
}

func (t *TrackingService) view(ctx context.Context, caller models.Caller, s *models.Shipment) (*TrackingView, error) {
	if _, err := t.gate.AuthorizeShipment(ctx, caller, OpTrackShipment, s); err != nil {
		return nil, err
	}

	v := &TrackingView{
		Shipment:          s,
		StatusText:        s.Status.Text(),
		StatusDescription: s.Status.Description(),
		DriverDisplay:     DriverNotAssigned,
	}

	if s.DriverID != "" {
		d, err := t.drivers.GetByID(ctx, s.DriverID)
		switch {
		case err == nil:
			v.Driver = d
			v.DriverDisplay = d.Name
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("shipment references a missing driver", "trackingCode", s.TrackingCode, "driverId", s.DriverID)
			v.DriverDisplay = DriverUnknown
		default:
			return nil, err
		}
	}

	loc, err := t.projector.Project(ctx, s, v.Driver)
	if err != nil {
		logger.Warn("location view degraded", "trackingCode", s.TrackingCode, "error", err)
		v.LocationMessage = LocationUnavailable
		return v, nil
	}
	v.Location = loc
	return v, nil
}
