package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionService encapsulates the business logic for transactions:
// create/list/update/delete, bulk CSV import, the monthly dashboard
// summary, and the post-persist expense side effects.
type TransactionService struct {
	transactions  TransactionStore
	categories    CategoryStore
	notifications NotificationStore
	users         UserStore
	budgets       *BudgetService
	mail          email.Sender
}

func NewTransactionService(transactions TransactionStore, categories CategoryStore, notifications NotificationStore, users UserStore, budgets *BudgetService, mail email.Sender) *TransactionService {
	return &TransactionService{
		transactions:  transactions,
		categories:    categories,
		notifications: notifications,
		users:         users,
		budgets:       budgets,
		mail:          mail,
	}
}

// CreateTransaction validates and persists a transaction, then runs
// the expense side effects. The transaction is durable before any side
// effect runs; side-effect failures never surface to the caller.
func (s *TransactionService) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if err := s.validate(ctx, txn); err != nil {
		return nil, err
	}

	created, err := s.transactions.CreateTransaction(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.processExpenseEffects(ctx, created)
	return created, nil
}

func (s *TransactionService) validate(ctx context.Context, txn *models.Transaction) error {
	parsed, ok := models.ParseTransactionType(string(txn.Type))
	if !ok {
		return fmt.Errorf("invalid transaction type %q", txn.Type)
	}
	txn.Type = parsed

	if txn.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(txn.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	if txn.Date.IsZero() {
		txn.Date = DateOf(time.Now())
	}
	if txn.CategoryID != nil {
		category, err := s.categories.GetCategoryByID(ctx, *txn.CategoryID)
		if err != nil || category.UserID != txn.UserID {
			return fmt.Errorf("category not found")
		}
	}
	// A fresh template must be eligible for materialization: give it a
	// next occurrence right away.
	if txn.IsRecurring && txn.NextOccurrenceDate == nil {
		next := txn.RecurringFrequency.Next(DateOf(txn.Date))
		txn.NextOccurrenceDate = &next
	}
	if !txn.IsRecurring {
		txn.RecurringFrequency = ""
		txn.NextOccurrenceDate = nil
	}
	return nil
}

// processExpenseEffects runs the post-persist side effects for expense
// transactions: a recurring-confirmation notification plus email, and
// the budget threshold check. Every error is caught and logged here.
func (s *TransactionService) processExpenseEffects(ctx context.Context, txn *models.Transaction) {
	// Case-insensitive on purpose; the reminder sweep's query matches
	// the stored "Expense" exactly. Two distinct policies.
	if parsed, ok := models.ParseTransactionType(string(txn.Type)); !ok || parsed != models.TypeExpense {
		return
	}

	user, err := s.users.GetUserByID(ctx, txn.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", txn.UserID.Hex()).Warn("Failed to look up user for expense side effects")
		user = nil
	}

	if txn.IsRecurring {
		msg := fmt.Sprintf("Recurring expense of %.2f %s recorded.", txn.Amount, txn.Currency)
		notif := &models.Notification{
			UserID:  txn.UserID,
			Type:    models.NotifInfo,
			Title:   "Recurring Expense Added",
			Message: msg,
		}
		if err := s.notifications.CreateNotification(ctx, notif); err != nil {
			logrus.WithError(err).Warn("Failed to persist recurring expense confirmation")
		}
		if user != nil && user.Email != "" {
			if err := s.mail.Send(user.Email, "Recurring Expense Added", msg); err != nil {
				logrus.WithError(err).Warn("Failed to send recurring expense confirmation email")
			}
		}
	}

	s.budgets.CheckThreshold(ctx, txn, user)
}

func (s *TransactionService) GetTransaction(ctx context.Context, userID, id primitive.ObjectID) (*models.Transaction, error) {
	txn, err := s.transactions.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("transaction not found")
	}
	return txn, nil
}

func (s *TransactionService) GetTransactions(ctx context.Context, userID primitive.ObjectID, filter models.TransactionFilter) ([]models.Transaction, error) {
	return s.transactions.GetTransactions(ctx, userID, filter)
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error {
	return s.transactions.UpdateTransaction(ctx, userID, id, update)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.transactions.DeleteTransaction(ctx, userID, id)
}

// ImportCSV ingests transactions from a CSV stream with the header
// date,type,amount,currency,description,is_recurring,frequency.
// Each valid row goes through the normal create path, side effects
// included. Invalid rows are logged and skipped.
func (s *TransactionService) ImportCSV(ctx context.Context, userID primitive.ObjectID, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read csv header: %v", err)
	}
	if len(header) < 4 {
		return 0, fmt.Errorf("csv header must contain at least date,type,amount,currency")
	}

	imported := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logrus.WithError(err).WithField("line", line).Warn("Skipping malformed csv row")
			continue
		}

		txn, err := parseCSVRow(userID, record)
		if err != nil {
			logrus.WithError(err).WithField("line", line).Warn("Skipping invalid csv row")
			continue
		}
		if _, err := s.CreateTransaction(ctx, txn); err != nil {
			logrus.WithError(err).WithField("line", line).Warn("Failed to import csv row")
			continue
		}
		imported++
	}

	logrus.WithFields(logrus.Fields{"user_id": userID.Hex(), "imported": imported}).Info("CSV import completed")
	return imported, nil
}

func parseCSVRow(userID primitive.ObjectID, record []string) (*models.Transaction, error) {
	if len(record) < 4 {
		return nil, fmt.Errorf("row has %d fields, want at least 4", len(record))
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", record[0])
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", record[2])
	}

	txn := &models.Transaction{
		UserID:   userID,
		Date:     date,
		Type:     models.TransactionType(strings.TrimSpace(record[1])),
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(record[3])),
	}
	if len(record) > 4 {
		txn.Description = strings.TrimSpace(record[4])
	}
	if len(record) > 5 {
		txn.IsRecurring, _ = strconv.ParseBool(strings.TrimSpace(record[5]))
	}
	if len(record) > 6 {
		txn.RecurringFrequency = models.Frequency(strings.TrimSpace(record[6]))
	}
	return txn, nil
}

// GetMonthlySummary aggregates one calendar month for the dashboard.
func (s *TransactionService) GetMonthlySummary(ctx context.Context, userID primitive.ObjectID, year int, month time.Month) (*models.DashboardSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	filter := models.TransactionFilter{From: start, To: start.AddDate(0, 1, 0)}

	transactions, err := s.transactions.GetTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for summary: %w", err)
	}

	categoryNames := make(map[string]string)
	if categories, err := s.categories.GetCategories(ctx, userID); err == nil {
		for _, category := range categories {
			categoryNames[category.ID.Hex()] = category.Name
		}
	}

	summary := &models.DashboardSummary{
		Year:       year,
		Month:      month,
		ByCategory: make(map[string]float64),
	}
	for _, txn := range transactions {
		switch txn.Type {
		case models.TypeIncome:
			summary.TotalIncome += txn.Amount
		case models.TypeExpense:
			summary.TotalExpense += txn.Amount
			name := "Uncategorized"
			if txn.CategoryID != nil {
				if n, ok := categoryNames[txn.CategoryID.Hex()]; ok {
					name = n
				}
			}
			summary.ByCategory[name] += txn.Amount
		}
	}
	summary.Net = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}
