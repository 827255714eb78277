package services

import (
	"context"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services depend on these store interfaces rather than on the
// Mongo repositories directly, so the temporal logic is testable
// without a database. The repository package implements all of them.

type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetTransactions(ctx context.Context, userID primitive.ObjectID, filter models.TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error
	DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error
	GetDueTemplates(ctx context.Context, due time.Time) ([]models.Transaction, error)
	ApplyMaterialization(ctx context.Context, instances []models.Transaction, advances []models.TemplateAdvance) error
	GetRecurringExpensesByDay(ctx context.Context, day int) ([]models.Transaction, error)
	SumExpensesForMonth(ctx context.Context, userID, categoryID primitive.ObjectID, year int, month time.Month) (float64, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetNotificationsPage(ctx context.Context, userID primitive.ObjectID, offset, limit int64) ([]models.Notification, error)
	CountNotifications(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error
	MarkManyAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteRead(ctx context.Context, userID primitive.ObjectID) error
	ReminderExists(ctx context.Context, userID primitive.ObjectID, notifType, dedupKey string, year int, month time.Month) (bool, error)
	DeleteExpired(ctx context.Context) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	GetCategories(ctx context.Context, userID primitive.ObjectID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error
	DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) error
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	GetBudgets(ctx context.Context, userID primitive.ObjectID) ([]models.Budget, error)
	GetBudgetForCategory(ctx context.Context, userID, categoryID primitive.ObjectID) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error
	DeleteBudget(ctx context.Context, userID, id primitive.ObjectID) error
}
