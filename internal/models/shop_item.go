package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShopItem is a storefront product. Its Price is the canonical unit price:
// checkout always re-reads it and ignores whatever the client cart claims.
type ShopItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
