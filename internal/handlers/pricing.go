package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"backend/internal/models"
)

var (
	// errInvalidProductID classifies a malformed product id as client
	// input, not a store failure.
	errInvalidProductID = errors.New("invalid productId")
	errDBUnavailable    = errors.New("database unavailable")
)

type shopItemNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e shopItemNotFoundError) Error() string {
	return "shop item not found"
}

// ItemPricer resolves requested cart lines into priced order items. Checkout
// depends on this instead of the database directly so the snapshot path can
// be exercised without one.
type ItemPricer interface {
	PriceItems(ctx context.Context, reqItems []checkoutItemRequest) ([]models.OrderItem, float64, error)
}

// ShopItemPricer prices lines from the canonical shop items collection,
// snapshotting name, price and image at their current values. The client
// cart's prices are never consulted.
type ShopItemPricer struct {
	db *mongo.Database
}

func NewShopItemPricer(db *mongo.Database) *ShopItemPricer {
	return &ShopItemPricer{db: db}
}

func (p *ShopItemPricer) PriceItems(ctx context.Context, reqItems []checkoutItemRequest) ([]models.OrderItem, float64, error) {
	if err := ensureDBConnection(ctx, p.db); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errDBUnavailable, err)
	}

	items := make([]models.OrderItem, 0, len(reqItems))
	var subtotal float64

	for _, reqItem := range reqItems {
		productID, err := primitive.ObjectIDFromHex(reqItem.ProductID)
		if err != nil {
			return nil, 0, errInvalidProductID
		}

		var item models.ShopItem
		err = p.db.Collection("shopitems").FindOne(ctx, bson.M{
			"_id":       productID,
			"isActive":  true,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&item)
		if err == mongo.ErrNoDocuments {
			return nil, 0, shopItemNotFoundError{ProductID: productID}
		}
		if err != nil {
			return nil, 0, err
		}

		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  reqItem.Quantity,
			Image:     item.ImagePath,
		})
		subtotal += item.Price * float64(reqItem.Quantity)
	}

	return items, subtotal, nil
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}
