package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryRepository handles database operations related to categories.
type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection("categories"),
	}
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert category")
		return nil, fmt.Errorf("failed to create category: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = id
	}
	return category, nil
}

func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, fmt.Errorf("failed to find category: %v", err)
	}
	return &category, nil
}

func (r *CategoryRepository) GetCategories(ctx context.Context, userID primitive.ObjectID) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch categories")
		return nil, fmt.Errorf("failed to fetch categories: %v", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %v", err)
	}
	return categories, nil
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update category: %v", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete category: %v", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
