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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionRepository handles database operations related to transactions.
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection("transactions"),
	}
}

// CreateTransaction inserts a new transaction.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert transaction")
		return nil, fmt.Errorf("failed to create transaction: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted transaction ID")
		return nil, fmt.Errorf("failed to read inserted transaction id")
	}
	txn.ID = insertedID
	return txn, nil
}

// GetTransactionByID fetches a transaction by its ID.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn); err != nil {
		logger.Log.WithError(err).WithField("transaction_id", id.Hex()).Error("Failed to find transaction")
		return nil, err
	}
	return &txn, nil
}

// GetTransactions fetches a user's transactions with optional filters.
func (r *TransactionRepository) GetTransactions(ctx context.Context, userID primitive.ObjectID, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := bson.M{"user_id": userID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	dateRange := bson.M{}
	if !filter.From.IsZero() {
		dateRange["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		dateRange["$lt"] = filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch transactions")
		return nil, fmt.Errorf("failed to fetch transactions: %v", err)
	}
	defer cursor.Close(ctx)

	var transactions []models.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %v", err)
	}
	return transactions, nil
}

// UpdateTransaction applies a partial update to a user's transaction.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, userID, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": update})
	if err != nil {
		logger.Log.WithError(err).WithField("transaction_id", id.Hex()).Error("Failed to update transaction")
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteTransaction removes a user's transaction.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("transaction_id", id.Hex()).Error("Failed to delete transaction")
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetDueTemplates returns every recurring template whose next occurrence
// is exactly due. Templates without a next-occurrence date are never due.
func (r *TransactionRepository) GetDueTemplates(ctx context.Context, due time.Time) ([]models.Transaction, error) {
	filter := bson.M{
		"is_recurring":         true,
		"next_occurrence_date": due,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch due recurring templates")
		return nil, fmt.Errorf("failed to fetch due templates: %v", err)
	}
	defer cursor.Close(ctx)

	var templates []models.Transaction
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode due templates: %v", err)
	}
	return templates, nil
}

// ApplyMaterialization persists one materialization batch: all new
// instances first, then the template advancements. The ordered insert
// fails fast, so a store failure leaves every unprocessed template due
// for the next cycle instead of half-committing the sweep.
func (r *TransactionRepository) ApplyMaterialization(ctx context.Context, instances []models.Transaction, advances []models.TemplateAdvance) error {
	if len(instances) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(instances))
	for i := range instances {
		instances[i].CreatedAt = now
		instances[i].UpdatedAt = now
		docs = append(docs, instances[i])
	}
	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		logger.Log.WithError(err).Error("Failed to insert materialized transactions")
		return fmt.Errorf("failed to insert materialized transactions: %v", err)
	}

	writes := make([]mongo.WriteModel, 0, len(advances))
	for _, adv := range advances {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": adv.TemplateID}).
			SetUpdate(bson.M{"$set": bson.M{"next_occurrence_date": adv.NextDate, "updated_at": now}}))
	}
	if _, err := r.collection.BulkWrite(ctx, writes); err != nil {
		logger.Log.WithError(err).Error("Failed to advance recurring templates")
		return fmt.Errorf("failed to advance templates: %v", err)
	}
	return nil
}

// GetRecurringExpensesByDay returns recurring expense rows whose posting
// date falls on the given day of the month, across all months and years.
// Matching historical postings too (not only the template row) tolerates
// bills recorded as plain postings.
func (r *TransactionRepository) GetRecurringExpensesByDay(ctx context.Context, day int) ([]models.Transaction, error) {
	filter := bson.M{
		"is_recurring": true,
		"type":         models.TypeExpense,
		"$expr": bson.M{
			"$eq": bson.A{bson.M{"$dayOfMonth": "$date"}, day},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).WithField("day", day).Error("Failed to fetch recurring expenses by day")
		return nil, fmt.Errorf("failed to fetch recurring expenses: %v", err)
	}
	defer cursor.Close(ctx)

	var bills []models.Transaction
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("failed to decode recurring expenses: %v", err)
	}
	return bills, nil
}

// SumExpensesForMonth totals a user's expenses in one category for the
// calendar month containing the given year/month.
func (r *TransactionRepository) SumExpensesForMonth(ctx context.Context, userID, categoryID primitive.ObjectID, year int, month time.Month) (float64, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":     userID,
			"category_id": categoryID,
			"type":        models.TypeExpense,
			"date":        bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to sum monthly expenses")
		return 0, fmt.Errorf("failed to sum expenses: %v", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode expense total: %v", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
