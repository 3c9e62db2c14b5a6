// server/internal/services/profile_service.go
package services

import (
	"context"

	"shipment-tracking-api-server/internal/models"
)

type ProfileService struct {
	users UserRepository
	gate  *Gate
}

func NewProfileService(users UserRepository, gate *Gate) *ProfileService {
	return &ProfileService{users: users, gate: gate}
}

func (p *ProfileService) Get(ctx context.Context, caller models.Caller) (*models.User, error) {
	return p.gate.Profile(ctx, caller)
}

// Update edits name, phone and address. The role is not reachable from here.
func (p *ProfileService) Update(ctx context.Context, caller models.Caller, in models.ProfileUpdate) (*models.User, error) {
	u, err := p.gate.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}

	in = models.ProfileUpdate{
		Name:    trimmed(in.Name),
		Phone:   trimmed(in.Phone),
		Address: trimmed(in.Address),
	}
	if in.Name == nil && in.Phone == nil && in.Address == nil {
		return u, nil
	}
	return p.users.UpdateProfile(ctx, caller.ID, in)
}
