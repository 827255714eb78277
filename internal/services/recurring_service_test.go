package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func template(user primitive.ObjectID, description string, frequency models.Frequency, next time.Time) models.Transaction {
	return models.Transaction{
		ID:                 primitive.NewObjectID(),
		UserID:             user,
		Currency:           "USD",
		Type:               models.TypeExpense,
		Amount:             15.99,
		Description:        description,
		Date:               next.AddDate(0, -1, 0),
		IsRecurring:        true,
		RecurringFrequency: frequency,
		NextOccurrenceDate: &next,
	}
}

func TestMaterializeDueRecurring(t *testing.T) {
	user := primitive.NewObjectID()
	asOf := day(2024, time.March, 1)

	store := &fakeTransactionStore{
		transactions: []models.Transaction{template(user, "Netflix", models.FrequencyMonthly, asOf)},
	}
	svc := NewRecurringService(store)

	created, err := svc.MaterializeDueRecurring(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	require.Len(t, store.transactions, 2)
	instance := store.transactions[1]
	assert.False(t, instance.IsRecurring)
	assert.Equal(t, asOf, instance.Date)
	assert.Equal(t, "Netflix", instance.Description)
	assert.Equal(t, 15.99, instance.Amount)

	tmpl := store.transactions[0]
	require.NotNil(t, tmpl.NextOccurrenceDate)
	assert.Equal(t, day(2024, time.April, 1), *tmpl.NextOccurrenceDate)
}

func TestMaterializeDueRecurringIsIdempotentPerDate(t *testing.T) {
	user := primitive.NewObjectID()
	asOf := day(2024, time.March, 1)

	store := &fakeTransactionStore{
		transactions: []models.Transaction{template(user, "Rent", models.FrequencyMonthly, asOf)},
	}
	svc := NewRecurringService(store)

	created, err := svc.MaterializeDueRecurring(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// The first run advanced the template, so the same date finds
	// nothing on the second run.
	created, err = svc.MaterializeDueRecurring(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, store.transactions, 2)
}

func TestMaterializeSkipsTemplatesWithoutNextDate(t *testing.T) {
	user := primitive.NewObjectID()
	asOf := day(2024, time.March, 1)

	orphan := template(user, "Gym", models.FrequencyMonthly, asOf)
	orphan.NextOccurrenceDate = nil

	store := &fakeTransactionStore{transactions: []models.Transaction{orphan}}
	svc := NewRecurringService(store)

	created, err := svc.MaterializeDueRecurring(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, store.transactions, 1)
}

func TestMaterializeTruncatesTimestampsToDate(t *testing.T) {
	user := primitive.NewObjectID()
	due := day(2024, time.March, 1)

	store := &fakeTransactionStore{
		transactions: []models.Transaction{template(user, "Netflix", models.FrequencyWeekly, due)},
	}
	svc := NewRecurringService(store)

	// The worker hands over a wall-clock timestamp, not a clean date.
	created, err := svc.MaterializeDueRecurring(context.Background(), time.Date(2024, time.March, 1, 14, 32, 9, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	tmpl := store.transactions[0]
	assert.Equal(t, day(2024, time.March, 8), *tmpl.NextOccurrenceDate)
}

func TestMaterializeAbortsBatchOnStoreFailure(t *testing.T) {
	user := primitive.NewObjectID()
	asOf := day(2024, time.March, 1)

	store := &fakeTransactionStore{
		transactions: []models.Transaction{
			template(user, "Netflix", models.FrequencyMonthly, asOf),
			template(user, "Rent", models.FrequencyMonthly, asOf),
		},
		applyErr: errors.New("store down"),
	}
	svc := NewRecurringService(store)

	created, err := svc.MaterializeDueRecurring(context.Background(), asOf)
	require.Error(t, err)
	assert.Equal(t, 0, created)

	// Nothing advanced: both templates stay due for the next cycle.
	assert.Len(t, store.transactions, 2)
	for _, tmpl := range store.transactions {
		assert.Equal(t, asOf, *tmpl.NextOccurrenceDate)
	}
}
