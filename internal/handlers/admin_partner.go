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

/*
POST /admin/api/partners
- multipart: name, website, logo file
*/
func CreatePartner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/partners"
		defer handlePanic(c, route)

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		partner := models.Partner{
			Name:      name,
			Website:   strings.TrimSpace(c.PostForm("website")),
			IsActive:  true,
			CreatedAt: time.Now(),
		}

		if file, err := c.FormFile("logo"); err == nil {
			webPath, err := saveUpload(c, file, "partners")
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			partner.LogoPath = webPath
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("partners").InsertOne(ctx, partner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		partner.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, partner)
	}
}

type PartnerUpdateRequest struct {
	Name     *string `json:"name"`
	Website  *string `json:"website"`
	IsActive *bool   `json:"isActive"`
}

/*
PUT /admin/api/partners/:id
*/
func UpdatePartner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req PartnerUpdateRequest
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
		if req.Website != nil {
			update["website"] = strings.TrimSpace(*req.Website)
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

		result, err := db.Collection("partners").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "partner updated"})
	}
}

/*
DELETE /admin/api/partners/:id
*/
func DeletePartner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/partners/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var partner models.Partner
		err = db.Collection("partners").FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&partner)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := safeDeleteUpload(partner.LogoPath); err != nil {
			log.Printf("[%s] logo delete failed: %v", route, err)
		}

		c.Status(http.StatusNoContent)
	}
}
