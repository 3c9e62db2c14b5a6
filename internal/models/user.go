// server/internal/models/user.go
package models

import "time"

// User is keyed by the identity the auth provider assigns to the caller.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	Role      Role      `bson:"role" json:"role" validate:"oneof=user admin"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID    string
	Email string
	Name  string
}

type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

// PaymentConfirmation is what the payment processor hands back on success.
type PaymentConfirmation struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}
