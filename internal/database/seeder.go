// server/internal/database/seeder.go
package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/models"
)

type RoleSetter interface {
	SetRole(ctx context.Context, id string, role models.Role) error
}

// SeedAdmins promotes the configured identities to admin, creating their
// profiles when missing. Running it again is harmless.
func SeedAdmins(ctx context.Context, users RoleSetter, adminIDs []string) error {
	seeded := 0
	for _, id := range adminIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := users.SetRole(ctx, id, models.RoleAdmin); err != nil {
			return errors.Wrapf(err, "seed admin %s", id)
		}
		seeded++
	}

	if seeded == 0 {
		logger.Info("No bootstrap admins configured. Seeding skipped.")
		return nil
	}
	logger.Info("Bootstrap admins seeded", "count", seeded)
	return nil
}
