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

	"backend/internal/models"
)

type GalleryFolderCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

/*
POST /admin/api/gallery
*/
func CreateGalleryFolder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GalleryFolderCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("galleryfolders").CountDocuments(ctx, bson.M{"name": name})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "folder already exists"})
			return
		}

		folder := models.GalleryFolder{
			Name:      name,
			Images:    []string{},
			IsActive:  true,
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("galleryfolders").InsertOne(ctx, folder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		folder.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, folder)
	}
}

/*
POST /admin/api/gallery/:id/images
- multipart upload, field "image"
*/
func UploadGalleryImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/gallery/:id/images"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
			return
		}

		webPath, err := saveUpload(c, file, "gallery")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("galleryfolders").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$push": bson.M{"images": webPath}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			if err := safeDeleteUpload(webPath); err != nil {
				log.Printf("[%s] orphan cleanup failed: %v", route, err)
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"image": webPath})
	}
}

type GalleryImageDeleteRequest struct {
	Image string `json:"image" binding:"required"`
}

/*
DELETE /admin/api/gallery/:id/images
*/
func DeleteGalleryImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/gallery/:id/images"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req GalleryImageDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("galleryfolders").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$pull": bson.M{"images": req.Image}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
			return
		}

		if err := safeDeleteUpload(req.Image); err != nil {
			log.Printf("[%s] file delete failed: %v", route, err)
		}

		c.Status(http.StatusNoContent)
	}
}

/*
DELETE /admin/api/gallery/:id
- removes the folder document and its files
*/
func DeleteGalleryFolder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/gallery/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var folder models.GalleryFolder
		err = db.Collection("galleryfolders").FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&folder)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		for _, image := range folder.Images {
			if err := safeDeleteUpload(image); err != nil {
				log.Printf("[%s] file delete failed: %v", route, err)
			}
		}

		c.Status(http.StatusNoContent)
	}
}
