// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/api/handlers"
	"shipment-tracking-api-server/internal/api/middleware"
	"shipment-tracking-api-server/internal/services"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Shipments *handlers.ShipmentHandler
	Tracking  *handlers.TrackingHandler
	Drivers   *handlers.DriverHandler
	Users     *handlers.UserHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

func SetupRouter(cfg config.Config, tokens middleware.TokenParser, gate middleware.Authorizer, h Handlers) *gin.Engine {
	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiV1 := router.Group("/api/v1")
	{
		// === Unauthenticated ===
		apiV1.GET("/health", h.Health.Health)
		apiV1.GET("/metrics", gin.WrapH(promhttp.Handler()))
		// token travels as ?token=
		apiV1.GET("/ws", h.WebSocket.ServeWs)

		// === Authenticated ===
		authed := apiV1.Group("/")
		authed.Use(middleware.Authenticate(tokens))
		{
			authed.GET("/me", h.Users.GetMe)
			authed.PUT("/me", h.Users.UpdateMe)

			authed.GET("/dashboard/stats", h.Shipments.GetDashboardStats)

			shipments := authed.Group("/shipments")
			{
				shipments.POST("", h.Shipments.CreateShipment)
				shipments.GET("", h.Shipments.ListMyShipments)
				shipments.GET("/:id", h.Shipments.GetShipment)
				shipments.GET("/:id/tracking", h.Tracking.ShipmentView)
				shipments.PATCH("/:id/recipient", h.Shipments.UpdateRecipient)
			}

			authed.GET("/tracking/:code", h.Tracking.TrackShipment)

			// === Admin console ===
			admin := authed.Group("/admin")
			admin.Use(middleware.Authorize(gate, services.OpAdminConsole))
			{
				adminShipments := admin.Group("/shipments")
				{
					adminShipments.GET("", h.Shipments.ListAllShipments)
					adminShipments.PATCH("/:id", h.Shipments.AdminUpdate)
					adminShipments.PUT("/:id/status", h.Shipments.UpdateStatus)
					adminShipments.PUT("/:id/driver", h.Shipments.AssignDriver)
					adminShipments.POST("/:id/delivery-proof", h.Shipments.AttachDeliveryProof)
				}

				drivers := admin.Group("/drivers")
				{
					drivers.GET("", h.Drivers.GetAllDrivers)
					drivers.POST("", h.Drivers.CreateDriver)
					drivers.GET("/:id", h.Drivers.GetDriverByID)
					drivers.PUT("/:id", h.Drivers.UpdateDriver)
					drivers.DELETE("/:id", h.Drivers.DeleteDriver)
				}
			}
		}
	}

	return router
}
