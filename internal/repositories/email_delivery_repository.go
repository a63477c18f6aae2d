package repositories

import (
	"context"
	"time"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/pkg/mailer"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailDeliveryRepository appends delivery attempts to the email_deliveries
// collection. It satisfies mailer.DeliveryLog.
type MongoEmailDeliveryRepository struct {
	collection *mongo.Collection
}

// NewMongoEmailDeliveryRepository creates a new MongoEmailDeliveryRepository
func NewMongoEmailDeliveryRepository(db *mongo.Database) *MongoEmailDeliveryRepository {
	return &MongoEmailDeliveryRepository{collection: db.Collection("email_deliveries")}
}

// Record stores one delivery attempt.
func (r *MongoEmailDeliveryRepository) Record(ctx context.Context, d mailer.Delivery) error {
	doc := models.EmailDelivery{
		ID:         primitive.NewObjectID(),
		Kind:       d.Kind,
		Subject:    d.Message.Subject,
		Recipients: d.Message.Recipients,
		SentAt:     d.At,
	}
	if d.Err != nil {
		doc.Error = d.Err.Error()
	}
	if doc.SentAt.IsZero() {
		doc.SentAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// Recent returns the latest deliveries for a recipient, newest first.
func (r *MongoEmailDeliveryRepository) Recent(ctx context.Context, recipient string, limit int64) ([]models.EmailDelivery, error) {
	deliveries := []models.EmailDelivery{}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "sent_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipients": recipient}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}
