// server/internal/models/delivery_proof.go
package models

import "time"

// DeliveryProof points at a proof-of-delivery photo kept in object storage.
type DeliveryProof struct {
	PhotoURL   string    `bson:"photoURL" json:"photoURL"`
	PhotoHash  string    `bson:"photoHash" json:"photoHash"`
	FileType   string    `bson:"fileType" json:"fileType"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
