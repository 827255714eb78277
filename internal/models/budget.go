package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Budget is a per-category monthly spending limit. Usage is computed
// from the month's expense transactions at check time, not stored.
type Budget struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	CategoryID primitive.ObjectID `bson:"category_id" json:"category_id"`
	Currency   string             `bson:"currency" json:"currency"`
	Limit      float64            `bson:"limit" json:"limit"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
