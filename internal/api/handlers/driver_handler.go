// server/internal/api/handlers/driver_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracking-api-server/internal/models"
)

type DriverHandler struct {
	Drivers DriverService
}

type CreateDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address"`
	LicenseNumber string `json:"licenseNumber" binding:"required"`
	VehicleType   string `json:"vehicleType" binding:"required"`
	Status        string `json:"status"`
}

type UpdateDriverRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	LicenseNumber *string `json:"licenseNumber"`
	VehicleType   *string `json:"vehicleType"`
	Status        *string `json:"status"`
}

func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.Drivers.Create(c.Request.Context(), caller(c), models.Driver{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		LicenseNumber: req.LicenseNumber,
		VehicleType:   req.VehicleType,
		Status:        models.DriverStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DriverHandler) GetAllDrivers(c *gin.Context) {
	list, err := h.Drivers.List(c.Request.Context(), caller(c), models.DriverFilter{
		Status: models.DriverStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DriverHandler) GetDriverByID(c *gin.Context) {
	d, err := h.Drivers.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u := models.DriverUpdate{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		LicenseNumber: req.LicenseNumber,
		VehicleType:   req.VehicleType,
	}
	if req.Status != nil {
		st := models.DriverStatus(*req.Status)
		u.Status = &st
	}

	d, err := h.Drivers.Update(c.Request.Context(), caller(c), c.Param("id"), u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	if err := h.Drivers.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully"})
}
