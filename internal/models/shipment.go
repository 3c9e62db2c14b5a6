// server/internal/models/shipment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Shipment struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingCode       string             `bson:"trackingCode" json:"trackingCode" validate:"trackingcode"`
	OwnerID            string             `bson:"ownerId" json:"ownerId" validate:"required"`
	Status             ShipmentStatus     `bson:"status" json:"status" validate:"shipmentstatus"`
	DriverID           string             `bson:"driverId,omitempty" json:"driverId,omitempty"`
	Origin             string             `bson:"origin" json:"origin" validate:"required"`
	Destination        string             `bson:"destination" json:"destination" validate:"required"`
	PackageName        string             `bson:"packageName" json:"packageName" validate:"required"`
	PackageDescription string             `bson:"packageDescription" json:"packageDescription"`
	Weight             float64            `bson:"weight" json:"weight" validate:"gte=0"`
	Dimensions         string             `bson:"dimensions" json:"dimensions"`
	PackageType        string             `bson:"packageType" json:"packageType" validate:"oneof=standard fragile perishable hazardous"`
	DeliverySpeed      string             `bson:"deliverySpeed" json:"deliverySpeed" validate:"oneof=standard express same_day"`
	RecipientName      string             `bson:"recipientName" json:"recipientName" validate:"required"`
	RecipientPhone     string             `bson:"recipientPhone" json:"recipientPhone" validate:"required"`
	RecipientEmail     string             `bson:"recipientEmail" json:"recipientEmail" validate:"omitempty,email"`
	DeliveryProof      *DeliveryProof     `bson:"deliveryProof,omitempty" json:"deliveryProof,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
	TransitDate        *time.Time         `bson:"transitDate,omitempty" json:"transitDate,omitempty"`
	DeliveryDate       *time.Time         `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	Version            int64              `bson:"version" json:"-"`
}

// NewShipment carries the caller-supplied fields of a shipment being created.
type NewShipment struct {
	Origin             string `validate:"required"`
	Destination        string `validate:"required"`
	PackageName        string `validate:"required"`
	PackageDescription string
	Weight             float64 `validate:"gt=0"`
	Dimensions         string
	PackageType        string `validate:"oneof=standard fragile perishable hazardous"`
	DeliverySpeed      string `validate:"oneof=standard express same_day"`
	RecipientName      string `validate:"required"`
	RecipientPhone     string `validate:"required"`
	RecipientEmail     string `validate:"omitempty,email"`
}

// ShipmentUpdate is a partial update. Nil fields are left untouched; a
// non-nil empty DriverID clears the assignment.
type ShipmentUpdate struct {
	Status         *ShipmentStatus
	DriverID       *string
	RecipientName  *string
	RecipientPhone *string
	RecipientEmail *string
	TransitDate    *time.Time
	DeliveryDate   *time.Time
	DeliveryProof  *DeliveryProof
}

func (u ShipmentUpdate) IsEmpty() bool {
	return u.Status == nil && u.DriverID == nil &&
		u.RecipientName == nil && u.RecipientPhone == nil && u.RecipientEmail == nil &&
		u.TransitDate == nil && u.DeliveryDate == nil && u.DeliveryProof == nil
}

// Apply merges u into s in memory. It mirrors what the repository writes.
func (u ShipmentUpdate) Apply(s *Shipment) {
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.DriverID != nil {
		s.DriverID = *u.DriverID
	}
	if u.RecipientName != nil {
		s.RecipientName = *u.RecipientName
	}
	if u.RecipientPhone != nil {
		s.RecipientPhone = *u.RecipientPhone
	}
	if u.RecipientEmail != nil {
		s.RecipientEmail = *u.RecipientEmail
	}
	if u.TransitDate != nil {
		t := *u.TransitDate
		s.TransitDate = &t
	}
	if u.DeliveryDate != nil {
		t := *u.DeliveryDate
		s.DeliveryDate = &t
	}
	if u.DeliveryProof != nil {
		p := *u.DeliveryProof
		s.DeliveryProof = &p
	}
}

type ShipmentFilter struct {
	OwnerID string
	Status  ShipmentStatus
	Search  string
	Limit   int64
}

type StatusCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	InTransit int64 `json:"inTransit"`
	Delivered int64 `json:"delivered"`
}

func (c *StatusCounts) Add(status ShipmentStatus, n int64) {
	c.Total += n
	switch status {
	case StatusPending:
		c.Pending += n
	case StatusInTransit:
		c.InTransit += n
	case StatusDelivered:
		c.Delivered += n
	}
}

type DashboardStats struct {
	Counts StatusCounts `json:"counts"`
	Recent []Shipment   `json:"recent"`
}
