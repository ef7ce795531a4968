package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GalleryFolder groups uploaded images under a named album.
type GalleryFolder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Images    []string           `bson:"images" json:"images"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
