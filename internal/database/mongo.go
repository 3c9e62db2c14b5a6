// server/internal/database/mongo.go
package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/repository"
)

const defaultConnectTimeout = 10 * time.Second

// Connect opens a client and pings the primary before returning it.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	logger.Info("connected to mongo", "db", cfg.DBName)
	return client, nil
}

// IndexSpecs lists the indexes each collection needs.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		repository.ShipmentsCollection: {
			{
				Keys:    bson.D{{Key: "trackingCode", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(repository.TrackingCodeIndex),
			},
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		repository.DriversCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range IndexSpecs() {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return errors.Wrapf(err, "create indexes on %s", coll)
		}
		logger.Debug("indexes ensured", "collection", coll, "indexes", names)
	}
	return nil
}
