// server/internal/repository/user_repository.go
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipment-tracking-api-server/internal/models"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func decodeUser(raw bson.Raw) (*models.User, error) {
	var u models.User
	if err := bson.Unmarshal(raw, &u); err != nil {
		return nil, decodeError("user", err)
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	raw, err := findRaw(ctx, r.coll, "find user", bson.M{"_id": id})
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return decodeUser(raw)
}

// EnsureProfile returns the caller's profile, creating it with role user on
// first sight. Existing documents are never modified.
func (r *UserRepository) EnsureProfile(ctx context.Context, caller models.Caller) (*models.User, error) {
	ts := now()
	insert := bson.M{"role": models.RoleUser, "createdAt": ts, "updatedAt": ts}
	if caller.Email != "" {
		insert["email"] = caller.Email
	}
	if caller.Name != "" {
		insert["name"] = caller.Name
	}
	update := bson.M{"$setOnInsert": insert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var raw bson.Raw
	upsert := func(ctx context.Context) error {
		var err error
		raw, err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": caller.ID}, update, opts).Raw()
		return err
	}
	err := withRetry(ctx, "ensure user", upsert)
	// two concurrent first requests can both try the insert; the loser sees the winner's document next time
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = withRetry(ctx, "ensure user", upsert)
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": now()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.Raw
	err := withRetry(ctx, "update user", func(ctx context.Context) error {
		var err error
		raw, err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Raw()
		return err
	})
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return decodeUser(raw)
}

// SetRole creates or updates the profile for id with the given role.
func (r *UserRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	ts := now()
	update := bson.M{
		"$set":         bson.M{"role": role, "updatedAt": ts},
		"$setOnInsert": bson.M{"createdAt": ts},
	}
	return withRetry(ctx, "set user role", func(ctx context.Context) error {
		_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
		return err
	})
}
