// server/internal/models/driver.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Driver struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	Phone         string             `bson:"phone" json:"phone" validate:"required"`
	Address       string             `bson:"address" json:"address"`
	LicenseNumber string             `bson:"licenseNumber" json:"licenseNumber" validate:"required"`
	VehicleType   string             `bson:"vehicleType" json:"vehicleType" validate:"oneof=car van truck motorcycle"`
	Status        DriverStatus       `bson:"status" json:"status" validate:"oneof=available busy offline"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type DriverUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	LicenseNumber *string
	VehicleType   *string
	Status        *DriverStatus
}

func (u DriverUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Address == nil &&
		u.LicenseNumber == nil && u.VehicleType == nil && u.Status == nil
}

func (u DriverUpdate) Apply(d *Driver) {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Email != nil {
		d.Email = *u.Email
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.LicenseNumber != nil {
		d.LicenseNumber = *u.LicenseNumber
	}
	if u.VehicleType != nil {
		d.VehicleType = *u.VehicleType
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
}

type DriverFilter struct {
	Status DriverStatus
	Search string
}
