// server/internal/repository/driver_repository.go
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

type DriverRepository struct {
	coll *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) *DriverRepository {
	return &DriverRepository{coll: db.Collection(DriversCollection)}
}

func decodeDriver(raw bson.Raw) (*models.Driver, error) {
	var d models.Driver
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, decodeError("driver", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("driver %s: %w", d.ID.Hex(), err)
	}
	return &d, nil
}

func (r *DriverRepository) Create(ctx context.Context, d *models.Driver) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	ts := now()
	d.CreatedAt = ts
	d.UpdatedAt = ts

	attempts := 0
	err := withRetry(ctx, "insert driver", func(ctx context.Context) error {
		attempts++
		_, err := r.coll.InsertOne(ctx, d)
		return err
	})
	if attempts > 1 && duplicateOn(err, primaryIndex) {
		return nil
	}
	return err
}

func (r *DriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	oid, err := objectID("driver", id)
	if err != nil {
		return nil, err
	}
	raw, err := findRaw(ctx, r.coll, "find driver", bson.M{"_id": oid})
	if err != nil {
		return nil, notFound(err, "driver", id)
	}
	return decodeDriver(raw)
}

func (r *DriverRepository) List(ctx context.Context, f models.DriverFilter) ([]models.Driver, error) {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Search != "" {
		query["$or"] = searchFilter(f.Search, "name", "email", "phone", "licenseNumber")
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	docs, err := collectRaw(ctx, r.coll, "list drivers", func(ctx context.Context) (*mongo.Cursor, error) {
		return r.coll.Find(ctx, query, opts)
	})
	if err != nil {
		return nil, err
	}

	drivers := make([]models.Driver, 0, len(docs))
	for _, raw := range docs {
		d, err := decodeDriver(raw)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	return drivers, nil
}

func (r *DriverRepository) Update(ctx context.Context, id string, u models.DriverUpdate) (*models.Driver, error) {
	oid, err := objectID("driver", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": now()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.LicenseNumber != nil {
		set["licenseNumber"] = *u.LicenseNumber
	}
	if u.VehicleType != nil {
		set["vehicleType"] = *u.VehicleType
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.Raw
	err = withRetry(ctx, "update driver", func(ctx context.Context) error {
		var err error
		raw, err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Raw()
		return err
	})
	if err != nil {
		return nil, notFound(err, "driver", id)
	}
	return decodeDriver(raw)
}

// Delete removes the driver. Shipments keep whatever driverId they hold.
func (r *DriverRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID("driver", id)
	if err != nil {
		return err
	}

	var res *mongo.DeleteResult
	err = withRetry(ctx, "delete driver", func(ctx context.Context) error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("driver %q: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
