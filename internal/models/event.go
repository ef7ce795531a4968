package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a community event shown on the public site.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt    time.Time          `bson:"startsAt" json:"startsAt"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
