// server/internal/models/status.go
package models

import (
	"fmt"
	"strings"

	"shipment-tracking-api-server/internal/apperrors"
)

type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
)

// ParseShipmentStatus accepts the stored form of a status, ignoring case and
// surrounding whitespace.
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	st := ShipmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, s)
	}
	return st, nil
}

func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Rank orders statuses along the forward path. Unknown statuses rank -1.
func (s ShipmentStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInTransit:
		return 1
	case StatusDelivered:
		return 2
	}
	return -1
}

func (s ShipmentStatus) Text() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInTransit:
		return "In Transit"
	case StatusDelivered:
		return "Delivered"
	}
	return "Unknown"
}

func (s ShipmentStatus) Description() string {
	switch s {
	case StatusPending:
		return "Your shipment has been registered and is awaiting processing"
	case StatusInTransit:
		return "Your shipment is on its way to the destination"
	case StatusDelivered:
		return "Your shipment has been delivered successfully"
	}
	return ""
}

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffline   DriverStatus = "offline"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin }
