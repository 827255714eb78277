package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/danabekov/fintrack/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService encapsulates the business logic for categories.
type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	kind, ok := models.ParseTransactionType(string(category.Kind))
	if !ok {
		return nil, fmt.Errorf("invalid category kind %q", category.Kind)
	}
	category.Kind = kind
	return s.repo.CreateCategory(ctx, category)
}

func (s *CategoryService) GetCategories(ctx context.Context, userID primitive.ObjectID) ([]models.Category, error) {
	return s.repo.GetCategories(ctx, userID)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id primitive.ObjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	return s.repo.UpdateCategory(ctx, userID, id, bson.M{"name": name})
}

func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.repo.DeleteCategory(ctx, userID, id)
}
