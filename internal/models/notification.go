package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags. Bill reminders and advance reminders are
// deduplicated per user, type and dedup key within a calendar month.
const (
	NotifBillReminder   = "bill_reminder"
	NotifBillAdvance    = "bill_advance"
	NotifInfo           = "Info"
	NotifExpenseWarning = "expense_warning"
	NotifBudgetExceeded = "budget_exceeded"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"notificationId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	DedupKey  string             `bson:"dedup_key,omitempty" json:"-"`
	Read      bool               `bson:"read" json:"isRead"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expires_at" json:"-"`
}

// NotificationPage is the paginated listing returned to clients.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	TotalCount    int64          `json:"totalCount"`
	UnreadCount   int64          `json:"unreadCount"`
	HasMore       bool           `json:"hasMore"`
}

// ReminderDedupKey derives the stable key used to suppress repeat
// reminders for the same bill description within a month. Matching
// by key replaces the old message-substring check with equivalent
// semantics for identical descriptions.
func ReminderDedupKey(description string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(description))))
	return fmt.Sprintf("%016x", h.Sum64())
}
