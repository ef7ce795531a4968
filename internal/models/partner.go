package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner is a sponsor/partner logo shown on the public site.
type Partner struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Website   string             `bson:"website,omitempty" json:"website,omitempty"`
	LogoPath  string             `bson:"logoPath,omitempty" json:"logoPath,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
