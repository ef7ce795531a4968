package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/cache"
	"backend/internal/models"
)

/*
GET /shop/items
- active items, newest first, served through the redis cache when enabled
*/
func GetShopItems(db *mongo.Database, itemCache *cache.ShopItemCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /shop/items"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if items, err := itemCache.Get(ctx); err == nil {
			c.JSON(http.StatusOK, items)
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[%s] cache read failed: %v", route, err)
		}

		filter := bson.M{
			"isActive":  true,
			"isDeleted": bson.M{"$ne": true},
		}
		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("shopitems").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var items []models.ShopItem
		if err := cursor.All(ctx, &items); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		if err := itemCache.Set(ctx, items); err != nil {
			log.Printf("[%s] cache fill failed: %v", route, err)
		}

		c.JSON(http.StatusOK, items)
	}
}
