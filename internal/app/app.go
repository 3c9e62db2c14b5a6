// server/internal/app/app.go
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/api/handlers"
	"shipment-tracking-api-server/internal/api/routes"
	"shipment-tracking-api-server/internal/auth"
	"shipment-tracking-api-server/internal/database"
	"shipment-tracking-api-server/internal/geocode"
	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/metrics"
	"shipment-tracking-api-server/internal/payment"
	"shipment-tracking-api-server/internal/repository"
	"shipment-tracking-api-server/internal/s3"
	"shipment-tracking-api-server/internal/services"
	"shipment-tracking-api-server/internal/socket"
)

// App owns every long-lived dependency of the API server.
type App struct {
	Config config.Config
	Router *gin.Engine
	Hub    *socket.Hub

	mongo *mongo.Client
	redis *redis.Client
}

// New connects the stores and assembles services, handlers and routes.
// Redis and S3 are optional: without them geocoding is uncached and
// delivery-proof uploads are rejected.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	metrics.Register()

	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, mongo: client, Hub: socket.NewHub()}

	db := client.Database(cfg.Mongo.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		a.Close(ctx)
		return nil, err
	}

	shipmentRepo := repository.NewShipmentRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := database.SeedAdmins(ctx, userRepo, cfg.Bootstrap.AdminIDs); err != nil {
		a.Close(ctx)
		return nil, err
	}

	var resolver services.Geocoder = geocode.NewORSGeocoder(cfg.Geocoding)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, geocode cache will be bypassed until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		resolver = geocode.NewCachedGeocoder(resolver, a.redis, cfg.Geocoding.KeyPrefix, cfg.Geocoding.CacheTTL)
	}

	var confirmer services.PaymentConfirmer = payment.PassThrough{}
	if cfg.Payment.Required {
		if cfg.Payment.RazorpayKeySecret == "" {
			a.Close(ctx)
			return nil, errors.New("payment.required is set but payment.razorpayKeySecret is empty")
		}
		confirmer = payment.NewRazorpayConfirmer(cfg.Payment.RazorpayKeySecret)
	} else {
		logger.Warn("payment confirmation disabled, every shipment creation is accepted")
	}

	var proofs services.ProofStore
	if cfg.S3.Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		proofs = uploader
	}

	tokens := auth.NewTokenManager(cfg.JWT)
	gate := services.NewGate(userRepo)
	projector := services.NewProjector(resolver, cfg.Tracking.GeocodeTimeout)

	shipmentSvc := services.NewShipmentService(services.ShipmentDeps{
		Shipments: shipmentRepo,
		Drivers:   driverRepo,
		Gate:      gate,
		Issuer:    services.NewIssuer(shipmentRepo, cfg.Tracking.IssueAttempts),
		Payments:  confirmer,
		Notifier:  a.Hub,
		Proofs:    proofs,
	})

	a.Router = routes.SetupRouter(cfg, tokens, gate, routes.Handlers{
		Shipments: &handlers.ShipmentHandler{Shipments: shipmentSvc},
		Tracking:  &handlers.TrackingHandler{Tracking: services.NewTrackingService(shipmentRepo, driverRepo, gate, projector)},
		Drivers:   &handlers.DriverHandler{Drivers: services.NewDriverService(driverRepo, gate)},
		Users:     &handlers.UserHandler{Profiles: services.NewProfileService(userRepo, gate)},
		WebSocket: &handlers.WebSocketHandler{Hub: a.Hub, Tokens: tokens},
		Health:    &handlers.HealthHandler{Checks: a.healthChecks()},
	})

	return a, nil
}

func (a *App) healthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"mongo": handlers.PingFunc(func(ctx context.Context) error {
			return a.mongo.Ping(ctx, readpref.Primary())
		}),
	}
	if a.redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	return checks
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			logger.Warn("disconnect mongo", "error", err)
		}
	}
}
