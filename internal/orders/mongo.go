package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

const collection = "orders"

// MongoStore is the production Store backed by the orders collection.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Create(ctx context.Context, order *models.Order) error {
	res, err := s.db.Collection(collection).InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"reference": reference}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid performs the idempotent paid transition as a single conditional
// update: the filter only matches while the order is still payable, and the
// status, timestamp and gateway id are set in one document write. A retried
// notification matches nothing and reports transitioned=false.
func (s *MongoStore) MarkPaid(ctx context.Context, reference, gatewayPaymentID string) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"reference": reference,
		"status":    bson.M{"$in": models.PayableStatuses()},
	}
	update := bson.M{"$set": bson.M{
		"status":           models.OrderStatusPaid,
		"paidAt":           now,
		"gatewayPaymentId": gatewayPaymentID,
	}}

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	// Nothing matched: either the order is already paid or beyond, or it
	// does not exist at all. The caller needs to tell these apart.
	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"reference": reference})
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Page > 0 && filter.Limit > 0 {
		findOptions.
			SetSkip((filter.Page - 1) * filter.Limit).
			SetLimit(filter.Limit)
	}

	total, err := s.db.Collection(collection).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var result []models.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
