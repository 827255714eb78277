package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType is the stored direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// ParseTransactionType normalizes free-form input ("expense", "EXPENSE")
// into one of the two stored values.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, true
	case "expense":
		return TypeExpense, true
	}
	return "", false
}

// Frequency is the recurrence cadence of a template transaction.
// It is stored as the raw string; anything unrecognized keeps the
// legacy monthly cadence (see Next).
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Next returns the occurrence that follows current. Month and year
// steps clamp the day-of-month when the target month is shorter
// (Jan 31 -> Feb 28). Unrecognized or empty frequencies advance by
// one month; that fallback is load-bearing, not an error.
func (f Frequency) Next(current time.Time) time.Time {
	switch Frequency(strings.ToLower(string(f))) {
	case FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyYearly:
		return addMonthsClamped(current, 12)
	case FrequencyMonthly:
		return addMonthsClamped(current, 1)
	default:
		// unrecognized cadence: keep the monthly fallback
		return addMonthsClamped(current, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	// day 0 of the following month is the last day of the target month
	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	h, m, s := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, h, m, s, t.Nanosecond(), t.Location())
}

// Transaction is a ledger entry. When IsRecurring is true the row
// doubles as the template for future postings: NextOccurrenceDate
// tells the background worker when to materialize the next instance.
type Transaction struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CategoryID         *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Currency           string              `bson:"currency" json:"currency"`
	Type               TransactionType     `bson:"type" json:"type"`
	Amount             float64             `bson:"amount" json:"amount"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	Date               time.Time           `bson:"date" json:"date"`
	IsRecurring        bool                `bson:"is_recurring" json:"is_recurring"`
	RecurringFrequency Frequency           `bson:"recurring_frequency,omitempty" json:"recurring_frequency,omitempty"`
	NextOccurrenceDate *time.Time          `bson:"next_occurrence_date,omitempty" json:"next_occurrence_date,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updated_at"`
}

// Materialize builds the concrete posting produced by this template
// on asOf. The instance is a one-shot entry, never a new template.
func (t *Transaction) Materialize(asOf time.Time) *Transaction {
	return &Transaction{
		UserID:      t.UserID,
		CategoryID:  t.CategoryID,
		Currency:    t.Currency,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        asOf,
		IsRecurring: false,
	}
}

// TemplateAdvance records the next-occurrence move for one template
// within a materialization batch.
type TemplateAdvance struct {
	TemplateID primitive.ObjectID
	NextDate   time.Time
}

// TransactionFilter narrows a user's transaction listing.
type TransactionFilter struct {
	Type       TransactionType
	CategoryID *primitive.ObjectID
	From       time.Time
	To         time.Time
}

// DashboardSummary aggregates one calendar month of activity.
type DashboardSummary struct {
	Year         int                `json:"year"`
	Month        time.Month         `json:"month"`
	TotalIncome  float64            `json:"total_income"`
	TotalExpense float64            `json:"total_expense"`
	Net          float64            `json:"net"`
	ByCategory   map[string]float64 `json:"by_category"`
}
