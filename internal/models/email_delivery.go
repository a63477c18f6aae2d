package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailDelivery is one attempt to send an email, kept in MongoDB for ops.
type EmailDelivery struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Kind       string             `json:"kind" bson:"kind"`
	Subject    string             `json:"subject" bson:"subject"`
	Recipients []string           `json:"recipients" bson:"recipients"`
	Error      string             `json:"error,omitempty" bson:"error,omitempty"`
	SentAt     time.Time          `json:"sent_at" bson:"sent_at"`
}
