// server/internal/services/gate.go
package services

import (
	"context"
	"fmt"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

type Operation string

const (
	OpCreateShipment   Operation = "shipment.create"
	OpViewShipment     Operation = "shipment.view"
	OpListOwnShipments Operation = "shipment.list_own"
	OpUpdateRecipient  Operation = "shipment.update_recipient"
	OpTrackShipment    Operation = "shipment.track"
	OpViewOwnStats     Operation = "stats.own"
	OpAdminConsole     Operation = "admin.console"
	OpListAllShipments Operation = "shipment.list_all"
	OpUpdateStatus     Operation = "shipment.update_status"
	OpAssignDriver     Operation = "shipment.assign_driver"
	OpAttachProof      Operation = "shipment.attach_proof"
	OpViewAllStats     Operation = "stats.all"
	OpViewDrivers      Operation = "driver.view"
	OpCreateDriver     Operation = "driver.create"
	OpUpdateDriver     Operation = "driver.update"
	OpDeleteDriver     Operation = "driver.delete"
)

var adminOnly = map[Operation]bool{
	OpAdminConsole:     true,
	OpListAllShipments: true,
	OpUpdateStatus:     true,
	OpAssignDriver:     true,
	OpAttachProof:      true,
	OpViewAllStats:     true,
	OpViewDrivers:      true,
	OpCreateDriver:     true,
	OpUpdateDriver:     true,
	OpDeleteDriver:     true,
}

// AdminOnly reports whether op is reserved for administrators.
func AdminOnly(op Operation) bool {
	return adminOnly[op]
}

type profileStore interface {
	EnsureProfile(ctx context.Context, caller models.Caller) (*models.User, error)
}

// Gate resolves a caller's role and decides whether an operation may proceed.
// Every service goes through it.
type Gate struct {
	users profileStore
}

func NewGate(users profileStore) *Gate {
	return &Gate{users: users}
}

// Profile returns the caller's profile, creating it with role user if this
// is the first time the identity is seen.
func (g *Gate) Profile(ctx context.Context, caller models.Caller) (*models.User, error) {
	if caller.ID == "" {
		return nil, fmt.Errorf("%w: anonymous caller", apperrors.ErrPermissionDenied)
	}
	return g.users.EnsureProfile(ctx, caller)
}

func (g *Gate) Authorize(ctx context.Context, caller models.Caller, op Operation) (models.Role, error) {
	u, err := g.Profile(ctx, caller)
	if err != nil {
		return "", err
	}
	if adminOnly[op] && !u.Role.IsAdmin() {
		return u.Role, fmt.Errorf("%w: %s requires admin", apperrors.ErrPermissionDenied, op)
	}
	return u.Role, nil
}

// AuthorizeShipment additionally requires the caller to own s unless they are an admin.
func (g *Gate) AuthorizeShipment(ctx context.Context, caller models.Caller, op Operation, s *models.Shipment) (models.Role, error) {
	role, err := g.Authorize(ctx, caller, op)
	if err != nil {
		return role, err
	}
	if !role.IsAdmin() && s.OwnerID != caller.ID {
		return role, fmt.Errorf("%w: shipment %s belongs to another user", apperrors.ErrPermissionDenied, s.TrackingCode)
	}
	return role, nil
}
