// server/internal/services/driver_service.go
package services

import (
	"context"
	"strings"

	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/models"
)

// DriverService is the admin-only driver directory.
type DriverService struct {
	drivers DriverRepository
	gate    *Gate
}

func NewDriverService(drivers DriverRepository, gate *Gate) *DriverService {
	return &DriverService{drivers: drivers, gate: gate}
}

func (s *DriverService) Create(ctx context.Context, caller models.Caller, d models.Driver) (*models.Driver, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpCreateDriver); err != nil {
		return nil, err
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if d.Status == "" {
		d.Status = models.DriverAvailable
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.drivers.Create(ctx, &d); err != nil {
		return nil, err
	}
	logger.Info("driver created", "id", d.ID.Hex(), "by", caller.ID)
	return &d, nil
}

func (s *DriverService) Get(ctx context.Context, caller models.Caller, id string) (*models.Driver, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpViewDrivers); err != nil {
		return nil, err
	}
	return s.drivers.GetByID(ctx, id)
}

func (s *DriverService) List(ctx context.Context, caller models.Caller, f models.DriverFilter) ([]models.Driver, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpViewDrivers); err != nil {
		return nil, err
	}
	return s.drivers.List(ctx, f)
}

func (s *DriverService) Update(ctx context.Context, caller models.Caller, id string, u models.DriverUpdate) (*models.Driver, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpUpdateDriver); err != nil {
		return nil, err
	}

	current, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return current, nil
	}

	u.Name = trimmed(u.Name)
	u.Email = trimmed(u.Email)
	u.Phone = trimmed(u.Phone)
	u.Address = trimmed(u.Address)
	u.LicenseNumber = trimmed(u.LicenseNumber)

	next := *current
	u.Apply(&next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return s.drivers.Update(ctx, id, u)
}

// Delete removes a driver. Shipments that reference it keep the id and show
// "Unknown Driver" from then on.
func (s *DriverService) Delete(ctx context.Context, caller models.Caller, id string) error {
	if _, err := s.gate.Authorize(ctx, caller, OpDeleteDriver); err != nil {
		return err
	}
	if err := s.drivers.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("driver deleted", "id", id, "by", caller.ID)
	return nil
}
