// server/internal/services/interfaces.go
package services

import (
	"context"
	"io"

	"shipment-tracking-api-server/internal/models"
)

type ShipmentRepository interface {
	Create(ctx context.Context, s *models.Shipment) error
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	GetByTrackingCode(ctx context.Context, code string) (*models.Shipment, error)
	TrackingCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, id string, version int64, u models.ShipmentUpdate) (*models.Shipment, error)
	List(ctx context.Context, f models.ShipmentFilter) ([]models.Shipment, error)
	CountByStatus(ctx context.Context, ownerID string) (models.StatusCounts, error)
}

type DriverRepository interface {
	Create(ctx context.Context, d *models.Driver) error
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	List(ctx context.Context, f models.DriverFilter) ([]models.Driver, error)
	Update(ctx context.Context, id string, u models.DriverUpdate) (*models.Driver, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	EnsureProfile(ctx context.Context, caller models.Caller) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, error)
}

type Geocoder interface {
	Resolve(ctx context.Context, address string) (models.Coordinates, error)
}

type PaymentConfirmer interface {
	Confirm(ctx context.Context, p *models.PaymentConfirmation) error
}

// Notifier pushes shipment changes to connected owners. Delivery is best effort.
type Notifier interface {
	NotifyShipmentUpdated(ownerID string, s *models.Shipment)
}

type ProofStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}
