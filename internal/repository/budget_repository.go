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

// BudgetRepository handles database operations related to monthly
// category spending limits.
type BudgetRepository struct {
	collection *mongo.Collection
}

func NewBudgetRepository(db *mongo.Database) *BudgetRepository {
	return &BudgetRepository{
		collection: db.Collection("budgets"),
	}
}

func (r *BudgetRepository) CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, budget)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert budget")
		return nil, fmt.Errorf("failed to create budget: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		budget.ID = id
	}
	return budget, nil
}

func (r *BudgetRepository) GetBudgets(ctx context.Context, userID primitive.ObjectID) ([]models.Budget, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch budgets")
		return nil, fmt.Errorf("failed to fetch budgets: %v", err)
	}
	defer cursor.Close(ctx)

	var budgets []models.Budget
	if err := cursor.All(ctx, &budgets); err != nil {
		return nil, fmt.Errorf("failed to decode budgets: %v", err)
	}
	return budgets, nil
}

// GetBudgetForCategory returns the user's limit for a category, or
// mongo.ErrNoDocuments when no limit is set.
func (r *BudgetRepository) GetBudgetForCategory(ctx context.Context, userID, categoryID primitive.ObjectID) (*models.Budget, error) {
	var budget models.Budget
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "category_id": categoryID}).Decode(&budget)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) UpdateBudget(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update budget: %v", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *BudgetRepository) DeleteBudget(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete budget: %v", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
