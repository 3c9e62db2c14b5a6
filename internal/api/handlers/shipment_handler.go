// server/internal/api/handlers/shipment_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shipment-tracking-api-server/internal/models"
	"shipment-tracking-api-server/internal/services"
)

var errInvalidLimit = errors.New("limit must be a positive integer")

const (
	defaultListLimit = 50
	maxListLimit     = 200
	proofFormField   = "photo"
)

type ShipmentHandler struct {
	Shipments ShipmentService
}

// --- Request bodies ---

type CreateShipmentRequest struct {
	Origin             string                      `json:"origin" binding:"required"`
	Destination        string                      `json:"destination" binding:"required"`
	PackageName        string                      `json:"packageName" binding:"required"`
	PackageDescription string                      `json:"packageDescription"`
	Weight             float64                     `json:"weight" binding:"required,gt=0"`
	Dimensions         string                      `json:"dimensions"`
	PackageType        string                      `json:"packageType" binding:"required"`
	DeliverySpeed      string                      `json:"deliverySpeed" binding:"required"`
	RecipientName      string                      `json:"recipientName" binding:"required"`
	RecipientPhone     string                      `json:"recipientPhone" binding:"required"`
	RecipientEmail     string                      `json:"recipientEmail"`
	Payment            *models.PaymentConfirmation `json:"payment"`
}

type UpdateRecipientRequest struct {
	RecipientName  *string `json:"recipientName"`
	RecipientPhone *string `json:"recipientPhone"`
	RecipientEmail *string `json:"recipientEmail"`
}

type AdminUpdateRequest struct {
	Status   *string `json:"status"`
	DriverID *string `json:"driverId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignDriverRequest struct {
	// empty clears the assignment
	DriverID string `json:"driverId"`
}

// --- Handlers ---

func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := models.NewShipment{
		Origin:             req.Origin,
		Destination:        req.Destination,
		PackageName:        req.PackageName,
		PackageDescription: req.PackageDescription,
		Weight:             req.Weight,
		Dimensions:         req.Dimensions,
		PackageType:        req.PackageType,
		DeliverySpeed:      req.DeliverySpeed,
		RecipientName:      req.RecipientName,
		RecipientPhone:     req.RecipientPhone,
		RecipientEmail:     req.RecipientEmail,
	}

	s, err := h.Shipments.Create(c.Request.Context(), caller(c), in, req.Payment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *ShipmentHandler) ListMyShipments(c *gin.Context) {
	f, err := listFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.Shipments.ListMine(c.Request.Context(), caller(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ShipmentHandler) ListAllShipments(c *gin.Context) {
	f, err := listFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.Shipments.ListAll(c.Request.Context(), caller(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	s, err := h.Shipments.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetDashboardStats returns the caller's counts; ?scope=all asks for every shipment.
func (h *ShipmentHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.Shipments.Stats(c.Request.Context(), caller(c), c.Query("scope") == "all")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ShipmentHandler) UpdateRecipient(c *gin.Context) {
	var req UpdateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.Shipments.UpdateRecipient(c.Request.Context(), caller(c), c.Param("id"), services.RecipientUpdate{
		Name:  req.RecipientName,
		Phone: req.RecipientPhone,
		Email: req.RecipientEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ShipmentHandler) AdminUpdate(c *gin.Context) {
	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.Shipments.AdminUpdate(c.Request.Context(), caller(c), c.Param("id"), services.AdminShipmentUpdate{
		Status:   req.Status,
		DriverID: req.DriverID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.Shipments.UpdateStatus(c.Request.Context(), caller(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ShipmentHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.Shipments.AssignDriver(c.Request.Context(), caller(c), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// AttachDeliveryProof takes a multipart upload in the "photo" field.
func (h *ShipmentHandler) AttachDeliveryProof(c *gin.Context) {
	header, err := c.FormFile(proofFormField)
	if err != nil {
		badRequest(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	s, err := h.Shipments.AttachDeliveryProof(c.Request.Context(), caller(c), c.Param("id"), file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func listFilter(c *gin.Context) (models.ShipmentFilter, error) {
	f := models.ShipmentFilter{Search: c.Query("search"), Limit: defaultListLimit}

	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseShipmentStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return f, errInvalidLimit
		}
		f.Limit = min(n, maxListLimit)
	}
	return f, nil
}
