// server/internal/api/handlers/tracking_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	Tracking TrackingService
}

// TrackShipment looks a shipment up by tracking code. The map view is best
// effort: when geocoding fails the response carries locationMessage instead.
func (h *TrackingHandler) TrackShipment(c *gin.Context) {
	view, err := h.Tracking.Lookup(c.Request.Context(), caller(c), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TrackingHandler) ShipmentView(c *gin.Context) {
	view, err := h.Tracking.ViewShipment(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
