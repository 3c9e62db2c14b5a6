// server/internal/repository/shipment_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

type ShipmentRepository struct {
	coll *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{coll: db.Collection(ShipmentsCollection)}
}

func decodeShipment(raw bson.Raw) (*models.Shipment, error) {
	var s models.Shipment
	if err := bson.Unmarshal(raw, &s); err != nil {
		return nil, decodeError("shipment", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("shipment %s: %w", s.ID.Hex(), err)
	}
	return &s, nil
}

// Create inserts s, assigning its id, timestamps and initial version. The id
// is generated client-side so a retried insert that already landed is not
// reported as a duplicate.
func (r *ShipmentRepository) Create(ctx context.Context, s *models.Shipment) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	ts := now()
	s.CreatedAt = ts
	s.UpdatedAt = ts
	s.Version = 1

	attempts := 0
	err := withRetry(ctx, "insert shipment", func(ctx context.Context) error {
		attempts++
		_, err := r.coll.InsertOne(ctx, s)
		return err
	})
	return insertOutcome(err, attempts, s.TrackingCode)
}

// insertOutcome maps the result of a possibly retried insert. A clash on the
// tracking code index is reported for reissue; a clash on _id after a retry
// means the first attempt landed.
func insertOutcome(err error, attempts int, code string) error {
	switch {
	case err == nil:
		return nil
	case duplicateOn(err, TrackingCodeIndex):
		return fmt.Errorf("%s: %w", code, apperrors.ErrDuplicateTrackingCode)
	case attempts > 1 && duplicateOn(err, primaryIndex):
		return nil
	}
	return err
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	oid, err := objectID("shipment", id)
	if err != nil {
		return nil, err
	}
	raw, err := findRaw(ctx, r.coll, "find shipment", bson.M{"_id": oid})
	if err != nil {
		return nil, notFound(err, "shipment", id)
	}
	return decodeShipment(raw)
}

func (r *ShipmentRepository) GetByTrackingCode(ctx context.Context, code string) (*models.Shipment, error) {
	raw, err := findRaw(ctx, r.coll, "find shipment by tracking code", bson.M{"trackingCode": code})
	if err != nil {
		return nil, notFound(err, "tracking code", code)
	}
	return decodeShipment(raw)
}

func (r *ShipmentRepository) TrackingCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := withRetry(ctx, "count tracking code", func(ctx context.Context) error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{"trackingCode": code}, options.Count().SetLimit(1))
		return err
	})
	return n > 0, err
}

// Update applies u only if the stored version still equals version. A lost
// race yields ErrConflict; a missing document yields ErrNotFound.
func (r *ShipmentRepository) Update(ctx context.Context, id string, version int64, u models.ShipmentUpdate) (*models.Shipment, error) {
	oid, err := objectID("shipment", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": now()}
	unset := bson.M{}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.DriverID != nil {
		if *u.DriverID == "" {
			unset["driverId"] = ""
		} else {
			set["driverId"] = *u.DriverID
		}
	}
	if u.RecipientName != nil {
		set["recipientName"] = *u.RecipientName
	}
	if u.RecipientPhone != nil {
		set["recipientPhone"] = *u.RecipientPhone
	}
	if u.RecipientEmail != nil {
		set["recipientEmail"] = *u.RecipientEmail
	}
	if u.TransitDate != nil {
		set["transitDate"] = *u.TransitDate
	}
	if u.DeliveryDate != nil {
		set["deliveryDate"] = *u.DeliveryDate
	}
	if u.DeliveryProof != nil {
		set["deliveryProof"] = u.DeliveryProof
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"_id": oid, "version": version}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raw bson.Raw
	err = withRetry(ctx, "update shipment", func(ctx context.Context) error {
		var err error
		raw, err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Raw()
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrConflict(ctx, oid, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeShipment(raw)
}

func (r *ShipmentRepository) missOrConflict(ctx context.Context, oid primitive.ObjectID, id string) error {
	var n int64
	err := withRetry(ctx, "count shipment", func(ctx context.Context) error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("shipment %q: %w", id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("shipment %q: %w", id, apperrors.ErrConflict)
}

func shipmentQuery(f models.ShipmentFilter) bson.M {
	query := bson.M{}
	if f.OwnerID != "" {
		query["ownerId"] = f.OwnerID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if strings.TrimSpace(f.Search) != "" {
		query["$or"] = searchFilter(f.Search, "trackingCode", "packageName", "destination", "recipientName")
	}
	return query
}

// List returns shipments matching f, newest first. An empty OwnerID lists
// every owner's shipments.
func (r *ShipmentRepository) List(ctx context.Context, f models.ShipmentFilter) ([]models.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	docs, err := collectRaw(ctx, r.coll, "list shipments", func(ctx context.Context) (*mongo.Cursor, error) {
		return r.coll.Find(ctx, shipmentQuery(f), opts)
	})
	if err != nil {
		return nil, err
	}

	shipments := make([]models.Shipment, 0, len(docs))
	for _, raw := range docs {
		s, err := decodeShipment(raw)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, nil
}

// CountByStatus counts shipments per status. An empty ownerID counts all.
func (r *ShipmentRepository) CountByStatus(ctx context.Context, ownerID string) (models.StatusCounts, error) {
	match := bson.M{}
	if ownerID != "" {
		match["ownerId"] = ownerID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	docs, err := collectRaw(ctx, r.coll, "count shipments by status", func(ctx context.Context) (*mongo.Cursor, error) {
		return r.coll.Aggregate(ctx, pipeline)
	})
	if err != nil {
		return models.StatusCounts{}, err
	}

	var counts models.StatusCounts
	for _, raw := range docs {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := bson.Unmarshal(raw, &row); err != nil {
			return models.StatusCounts{}, decodeError("status count", err)
		}
		counts.Add(models.ShipmentStatus(row.Status), row.Count)
	}
	return counts, nil
}
