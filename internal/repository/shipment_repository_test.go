package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

const shipmentsNS = "test.shipments"

func TestShipmentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by id", func(mt *mtest.T) {
		s := storedShipment()
		s.ID = primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch, toDoc(mt.T, s)))

		got, err := NewShipmentRepository(mt.DB).GetByID(ctx, s.ID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, s.TrackingCode, got.TrackingCode)
		assert.Equal(mt, s.Version, got.Version)
		assert.True(mt, s.CreatedAt.Equal(got.CreatedAt))
		assert.Nil(mt, got.TransitDate)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch))

		_, err := NewShipmentRepository(mt.DB).GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("get by malformed id", func(mt *mtest.T) {
		_, err := NewShipmentRepository(mt.DB).GetByID(ctx, "not-an-id")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("malformed stored document", func(mt *mtest.T) {
		s := storedShipment()
		s.ID = primitive.NewObjectID()
		s.Status = "lost"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch, toDoc(mt.T, s)))

		_, err := NewShipmentRepository(mt.DB).GetByID(ctx, s.ID.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrValidation)
	})

	mt.Run("unknown tracking code", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch))

		_, err := NewShipmentRepository(mt.DB).GetByTrackingCode(ctx, "TRK999999")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := storedShipment()
		s.CreatedAt = time.Time{}
		require.NoError(mt, NewShipmentRepository(mt.DB).Create(ctx, &s))
		assert.False(mt, s.ID.IsZero())
		assert.Equal(mt, int64(1), s.Version)
		assert.False(mt, s.CreatedAt.IsZero())
		assert.Equal(mt, s.CreatedAt, s.UpdatedAt)
	})

	mt.Run("create with taken tracking code", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: test.shipments index: trackingCode_1 dup key: { trackingCode: "TRK000042" }`,
		}))

		s := storedShipment()
		err := NewShipmentRepository(mt.DB).Create(ctx, &s)
		assert.ErrorIs(mt, err, apperrors.ErrDuplicateTrackingCode)
	})

	mt.Run("tracking code exists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		exists, err := NewShipmentRepository(mt.DB).TrackingCodeExists(ctx, "TRK000042")
		require.NoError(mt, err)
		assert.True(mt, exists)
	})

	mt.Run("update applies when version matches", func(mt *mtest.T) {
		s := storedShipment()
		s.ID = primitive.NewObjectID()
		transit := s.CreatedAt.Add(time.Hour)
		s.Status = models.StatusInTransit
		s.TransitDate = &transit
		s.Version = 2
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt.T, s)}))

		status := models.StatusInTransit
		got, err := NewShipmentRepository(mt.DB).Update(ctx, s.ID.Hex(), 1, models.ShipmentUpdate{
			Status:      &status,
			TransitDate: &transit,
		})
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusInTransit, got.Status)
		assert.Equal(mt, int64(2), got.Version)
		require.NotNil(mt, got.TransitDate)
		assert.True(mt, transit.Equal(*got.TransitDate))
	})

	mt.Run("update with stale version", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		empty := ""
		_, err := NewShipmentRepository(mt.DB).Update(ctx, primitive.NewObjectID().Hex(), 1, models.ShipmentUpdate{DriverID: &empty})
		assert.ErrorIs(mt, err, apperrors.ErrConflict)
	})

	mt.Run("update missing shipment", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch),
		)

		name := "Homer"
		_, err := NewShipmentRepository(mt.DB).Update(ctx, primitive.NewObjectID().Hex(), 1, models.ShipmentUpdate{RecipientName: &name})
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		newer := storedShipment()
		newer.ID = primitive.NewObjectID()
		newer.TrackingCode = "TRK000043"
		newer.CreatedAt = newer.CreatedAt.Add(time.Hour)
		older := storedShipment()
		older.ID = primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch, toDoc(mt.T, newer), toDoc(mt.T, older)))

		got, err := NewShipmentRepository(mt.DB).List(ctx, models.ShipmentFilter{OwnerID: "user-1"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "TRK000043", got[0].TrackingCode)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch))

		got, err := NewShipmentRepository(mt.DB).List(ctx, models.ShipmentFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("count by status", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, shipmentsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "pending"}, {Key: "count", Value: int32(3)}},
			bson.D{{Key: "_id", Value: "delivered"}, {Key: "count", Value: int32(2)}},
		))

		counts, err := NewShipmentRepository(mt.DB).CountByStatus(ctx, "user-1")
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusCounts{Total: 5, Pending: 3, Delivered: 2}, counts)
	})
}

func TestShipmentQuery(t *testing.T) {
	q := shipmentQuery(models.ShipmentFilter{OwnerID: "u1", Status: models.StatusDelivered, Search: "spring"})
	assert.Equal(t, "u1", q["ownerId"])
	assert.Equal(t, models.StatusDelivered, q["status"])
	assert.Len(t, q["$or"], 4)

	assert.Empty(t, shipmentQuery(models.ShipmentFilter{Search: "  "}))
}

func dupKey(index string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: test.shipments index: " + index + " dup key: { }",
	}}}
}

func TestInsertOutcome(t *testing.T) {
	assert.NoError(t, insertOutcome(nil, 1, "TRK000042"))

	err := insertOutcome(dupKey(TrackingCodeIndex), 1, "TRK000042")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateTrackingCode)
	assert.ErrorIs(t, insertOutcome(dupKey(TrackingCodeIndex), 2, "TRK000042"), apperrors.ErrDuplicateTrackingCode)

	// the first attempt landed before its reply was lost
	assert.NoError(t, insertOutcome(dupKey(primaryIndex), 2, "TRK000042"))

	first := insertOutcome(dupKey(primaryIndex), 1, "TRK000042")
	assert.Error(t, first)
	assert.NotErrorIs(t, first, apperrors.ErrDuplicateTrackingCode)

	// a field merely named like the index is not enough
	other := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: test.shipments index: ownerId_trackingCode_1 dup key: { }`,
	}}}
	assert.NotErrorIs(t, insertOutcome(other, 1, "TRK000042"), apperrors.ErrDuplicateTrackingCode)

	plain := errors.New("boom")
	assert.Equal(t, plain, insertOutcome(plain, 2, "TRK000042"))
}
