// server/internal/api/handlers/handlers.go
package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracking-api-server/internal/api/middleware"
	"shipment-tracking-api-server/internal/models"
	"shipment-tracking-api-server/internal/services"
)

type ShipmentService interface {
	Create(ctx context.Context, caller models.Caller, in models.NewShipment, payment *models.PaymentConfirmation) (*models.Shipment, error)
	Get(ctx context.Context, caller models.Caller, id string) (*models.Shipment, error)
	ListMine(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error)
	ListAll(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error)
	Stats(ctx context.Context, caller models.Caller, all bool) (*models.DashboardStats, error)
	UpdateRecipient(ctx context.Context, caller models.Caller, id string, in services.RecipientUpdate) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, caller models.Caller, id, status string) (*models.Shipment, error)
	AssignDriver(ctx context.Context, caller models.Caller, id, driverID string) (*models.Shipment, error)
	AdminUpdate(ctx context.Context, caller models.Caller, id string, in services.AdminShipmentUpdate) (*models.Shipment, error)
	AttachDeliveryProof(ctx context.Context, caller models.Caller, id string, file io.Reader, contentType string) (*models.Shipment, error)
}

type TrackingService interface {
	Lookup(ctx context.Context, caller models.Caller, code string) (*services.TrackingView, error)
	ViewShipment(ctx context.Context, caller models.Caller, id string) (*services.TrackingView, error)
}

type DriverService interface {
	Create(ctx context.Context, caller models.Caller, d models.Driver) (*models.Driver, error)
	Get(ctx context.Context, caller models.Caller, id string) (*models.Driver, error)
	List(ctx context.Context, caller models.Caller, f models.DriverFilter) ([]models.Driver, error)
	Update(ctx context.Context, caller models.Caller, id string, u models.DriverUpdate) (*models.Driver, error)
	Delete(ctx context.Context, caller models.Caller, id string) error
}

type ProfileService interface {
	Get(ctx context.Context, caller models.Caller) (*models.User, error)
	Update(ctx context.Context, caller models.Caller, in models.ProfileUpdate) (*models.User, error)
}

func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
}

// caller is only missing when a route was registered without Authenticate.
func caller(c *gin.Context) models.Caller {
	who, _ := middleware.CallerFrom(c)
	return who
}
