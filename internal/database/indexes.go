package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureOrderIndexes creates the indexes the order lifecycle depends on. The
// unique reference index backs the webhook lookup: a gateway notification is
// matched to exactly one order or to none.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	referenceIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().
			SetName("reference_unique").
			SetUnique(true),
	}
	statusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_createdAt"),
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{referenceIndex, statusIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

// EnsureAdminIndexes keeps admin e-mails unique.
func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("admins").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAdminIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	return nil
}
