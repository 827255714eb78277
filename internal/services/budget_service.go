package services

import (
	"context"
	"fmt"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const budgetWarningThreshold = 80.0

// BudgetService manages per-category monthly spending limits and the
// threshold notifications that fire when an expense pushes a category
// near or over its limit.
type BudgetService struct {
	budgets       BudgetStore
	categories    CategoryStore
	transactions  TransactionStore
	notifications NotificationStore
	mail          email.Sender
}

func NewBudgetService(budgets BudgetStore, categories CategoryStore, transactions TransactionStore, notifications NotificationStore, mail email.Sender) *BudgetService {
	return &BudgetService{
		budgets:       budgets,
		categories:    categories,
		transactions:  transactions,
		notifications: notifications,
		mail:          mail,
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	if budget.Limit <= 0 {
		return nil, fmt.Errorf("budget limit must be positive")
	}
	category, err := s.categories.GetCategoryByID(ctx, budget.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category not found")
	}
	if category.UserID != budget.UserID {
		return nil, fmt.Errorf("category does not belong to user")
	}
	return s.budgets.CreateBudget(ctx, budget)
}

func (s *BudgetService) GetBudgets(ctx context.Context, userID primitive.ObjectID) ([]models.Budget, error) {
	return s.budgets.GetBudgets(ctx, userID)
}

func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id primitive.ObjectID, limit float64) error {
	if limit <= 0 {
		return fmt.Errorf("budget limit must be positive")
	}
	return s.budgets.UpdateBudget(ctx, userID, id, bson.M{"limit": limit})
}

func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.budgets.DeleteBudget(ctx, userID, id)
}

// CheckThreshold evaluates the month-to-date spend of the transaction's
// category against its budget and emits at most one expense_warning or
// budget_exceeded notification per category and month. Callers invoke
// it after the expense is already durable; it never returns an error.
func (s *BudgetService) CheckThreshold(ctx context.Context, txn *models.Transaction, user *models.User) {
	if txn.CategoryID == nil {
		return
	}

	budget, err := s.budgets.GetBudgetForCategory(ctx, txn.UserID, *txn.CategoryID)
	if err != nil || budget == nil || budget.Limit <= 0 {
		return
	}

	spent, err := s.transactions.SumExpensesForMonth(ctx, txn.UserID, *txn.CategoryID, txn.Date.Year(), txn.Date.Month())
	if err != nil {
		logrus.WithError(err).Warn("Failed to sum monthly spend for budget check")
		return
	}

	usage := spent / budget.Limit * 100
	var notifType, title string
	switch {
	case usage > 100:
		notifType = models.NotifBudgetExceeded
		title = "Budget Exceeded"
	case usage >= budgetWarningThreshold:
		notifType = models.NotifExpenseWarning
		title = "Budget Warning"
	default:
		return
	}

	categoryName := "this category"
	if category, err := s.categories.GetCategoryByID(ctx, *txn.CategoryID); err == nil {
		categoryName = category.Name
	}

	key := models.ReminderDedupKey(txn.CategoryID.Hex())
	exists, err := s.notifications.ReminderExists(ctx, txn.UserID, notifType, key, txn.Date.Year(), txn.Date.Month())
	if err != nil || exists {
		return
	}

	msg := fmt.Sprintf("You have spent %.2f of your %.2f %s limit for %s this month.",
		spent, budget.Limit, budget.Currency, categoryName)
	notif := &models.Notification{
		UserID:   txn.UserID,
		Type:     notifType,
		Title:    title,
		Message:  msg,
		DedupKey: key,
	}
	if err := s.notifications.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).Warn("Failed to persist budget notification")
		return
	}

	if user != nil && user.Email != "" {
		if err := s.mail.Send(user.Email, title, msg); err != nil {
			logrus.WithError(err).Warn("Failed to send budget email")
		}
	}
}
