package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/cache"
	"backend/internal/models"
)

type ShopItemCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	ImagePath   string  `json:"imagePath"`
	IsActive    *bool   `json:"isActive"`
}

type ShopItemUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImagePath   *string  `json:"imagePath"`
	IsActive    *bool    `json:"isActive"`
}

/*
GET /admin/api/shop/items
- includes inactive, excludes deleted
*/
func GetAllShopItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{"isDeleted": bson.M{"$ne": true}}

		if v := strings.TrimSpace(c.Query("isActive")); v != "" {
			filter["isActive"] = v == "true"
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("shopitems").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var items []models.ShopItem
		if err := cursor.All(ctx, &items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

/*
POST /admin/api/shop/items
*/
func CreateShopItem(db *mongo.Database, itemCache *cache.ShopItemCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShopItemCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than 0"})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		item := models.ShopItem{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Price:       req.Price,
			ImagePath:   strings.TrimSpace(req.ImagePath),
			IsActive:    isActive,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("shopitems").InsertOne(ctx, item)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		item.ID = result.InsertedID.(primitive.ObjectID)

		invalidateShopCache(ctx, itemCache)
		c.JSON(http.StatusCreated, item)
	}
}

/*
PUT /admin/api/shop/items/:id
*/
func UpdateShopItem(db *mongo.Database, itemCache *cache.ShopItemCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ShopItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			update["name"] = name
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than 0"})
				return
			}
			update["price"] = *req.Price
		}
		if req.ImagePath != nil {
			update["imagePath"] = strings.TrimSpace(*req.ImagePath)
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.ShopItem
		err = db.Collection("shopitems").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "shop item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		invalidateShopCache(ctx, itemCache)
		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/shop/items/:id
- soft delete; existing orders keep their snapshots either way
*/
func DeleteShopItem(db *mongo.Database, itemCache *cache.ShopItemCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("shopitems").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"isDeleted": true, "isActive": false, "deletedAt": now}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "shop item not found"})
			return
		}

		invalidateShopCache(ctx, itemCache)
		c.Status(http.StatusNoContent)
	}
}

func invalidateShopCache(ctx context.Context, itemCache *cache.ShopItemCache) {
	if err := itemCache.Invalidate(ctx); err != nil {
		log.Println("[SHOP] cache invalidate failed:", err)
	}
}
