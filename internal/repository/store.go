// server/internal/repository/store.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/logger"
)

const (
	ShipmentsCollection = "shipments"
	DriversCollection   = "drivers"
	UsersCollection     = "users"

	TrackingCodeIndex = "trackingCode_1"
	primaryIndex      = "_id_"
)

// now is the store clock. Mongo keeps millisecond precision, so times are
// truncated before they are written to keep in-memory and stored values equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func transient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// withRetry runs fn and repeats it exactly once when the first attempt fails
// with a network or timeout error. A second transient failure is reported as
// ErrStoreUnavailable.
func withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !transient(err) {
		return err
	}
	if ctx.Err() != nil {
		return &unavailableError{op: op, err: err}
	}

	logger.Warn("transient store error, retrying", "op", op, "error", err)
	err = fn(ctx)
	if err != nil && transient(err) {
		return &unavailableError{op: op, err: err}
	}
	return err
}

// unavailableError matches ErrStoreUnavailable while keeping the driver error
// on a single Unwrap chain, which mongo.IsNetworkError and IsTimeout walk.
type unavailableError struct {
	op  string
	err error
}

func (e *unavailableError) Error() string {
	return e.op + ": " + apperrors.ErrStoreUnavailable.Error() + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() error { return e.err }

func (e *unavailableError) Is(target error) bool {
	return target == apperrors.ErrStoreUnavailable
}

// duplicateOn reports whether err carries a duplicate key write error raised
// by the named index.
func duplicateOn(err error, index string) bool {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return false
	}
	for _, e := range we.WriteErrors {
		switch e.Code {
		case 11000, 11001, 12582:
			if strings.Contains(e.Message, "index: "+index+" ") {
				return true
			}
		}
	}
	return false
}

func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
	}
	return oid, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
	}
	return err
}

// findRaw fetches a single document and hands back the raw bytes so decoding
// can happen outside the retry loop.
func findRaw(ctx context.Context, coll *mongo.Collection, op string, filter any) (bson.Raw, error) {
	var raw bson.Raw
	err := withRetry(ctx, op, func(ctx context.Context) error {
		var err error
		raw, err = coll.FindOne(ctx, filter).Raw()
		return err
	})
	return raw, err
}

func collectRaw(ctx context.Context, coll *mongo.Collection, op string, open func(context.Context) (*mongo.Cursor, error)) ([]bson.Raw, error) {
	var docs []bson.Raw
	err := withRetry(ctx, op, func(ctx context.Context) error {
		docs = docs[:0]
		cursor, err := open(ctx)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			doc := make(bson.Raw, len(cursor.Current))
			copy(doc, cursor.Current)
			docs = append(docs, doc)
		}
		return cursor.Err()
	})
	return docs, err
}

func searchFilter(term string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(term)), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return or
}

func decodeError(kind string, err error) error {
	return fmt.Errorf("%w: decode %s: %v", apperrors.ErrValidation, kind, err)
}
