package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type EventCreateRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	ImagePath   string    `json:"imagePath"`
	IsActive    *bool     `json:"isActive"`
}

type EventUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	ImagePath   *string    `json:"imagePath"`
	IsActive    *bool      `json:"isActive"`
}

/*
GET /admin/api/events
*/
func GetAllEvents(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := options.Find().
			SetSort(bson.D{{Key: "startsAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("events").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var result []models.Event
		if err := cursor.All(ctx, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

/*
POST /admin/api/events
*/
func CreateEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EventCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		event := models.Event{
			Title:       title,
			Description: strings.TrimSpace(req.Description),
			Location:    strings.TrimSpace(req.Location),
			StartsAt:    req.StartsAt,
			ImagePath:   strings.TrimSpace(req.ImagePath),
			IsActive:    isActive,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("events").InsertOne(ctx, event)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		event.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, event)
	}
}

/*
PUT /admin/api/events/:id
*/
func UpdateEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req EventUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		update := bson.M{}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
				return
			}
			update["title"] = title
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Location != nil {
			update["location"] = strings.TrimSpace(*req.Location)
		}
		if req.StartsAt != nil {
			update["startsAt"] = *req.StartsAt
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

		var updated models.Event
		err = db.Collection("events").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/events/:id
*/
func DeleteEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("events").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
