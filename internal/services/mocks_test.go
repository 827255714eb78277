package services

import (
	"context"
	"errors"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Hand-written in-memory fakes for the store interfaces. They keep
// just enough behavior for the temporal logic under test: exact-date
// template matching, day-of-month bill matching and month-scoped
// reminder dedup.

type fakeTransactionStore struct {
	transactions []models.Transaction
	nextID       int

	createErr error
	fetchErr  error
	applyErr  error
	sumErr    error

	applyCalls int
}

func (f *fakeTransactionStore) newID() primitive.ObjectID {
	f.nextID++
	var raw [12]byte
	raw[11] = byte(f.nextID)
	raw[10] = byte(f.nextID >> 8)
	return primitive.ObjectID(raw)
}

func (f *fakeTransactionStore) CreateTransaction(_ context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	txn.ID = f.newID()
	f.transactions = append(f.transactions, *txn)
	return txn, nil
}

func (f *fakeTransactionStore) GetTransactionByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	for i := range f.transactions {
		if f.transactions[i].ID == id {
			txn := f.transactions[i]
			return &txn, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeTransactionStore) GetTransactions(_ context.Context, userID primitive.ObjectID, filter models.TransactionFilter) ([]models.Transaction, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.Transaction
	for _, txn := range f.transactions {
		if txn.UserID != userID {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.CategoryID != nil && (txn.CategoryID == nil || *txn.CategoryID != *filter.CategoryID) {
			continue
		}
		if !filter.From.IsZero() && txn.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !txn.Date.Before(filter.To) {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (f *fakeTransactionStore) UpdateTransaction(_ context.Context, userID, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, userID, id primitive.ObjectID) error {
	for i := range f.transactions {
		if f.transactions[i].ID == id && f.transactions[i].UserID == userID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeTransactionStore) GetDueTemplates(_ context.Context, due time.Time) ([]models.Transaction, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.Transaction
	for _, txn := range f.transactions {
		if txn.IsRecurring && txn.NextOccurrenceDate != nil && txn.NextOccurrenceDate.Equal(due) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) ApplyMaterialization(_ context.Context, instances []models.Transaction, advances []models.TemplateAdvance) error {
	f.applyCalls++
	if f.applyErr != nil {
		return f.applyErr
	}
	for i := range instances {
		instances[i].ID = f.newID()
		f.transactions = append(f.transactions, instances[i])
	}
	for _, adv := range advances {
		for i := range f.transactions {
			if f.transactions[i].ID == adv.TemplateID {
				next := adv.NextDate
				f.transactions[i].NextOccurrenceDate = &next
			}
		}
	}
	return nil
}

func (f *fakeTransactionStore) GetRecurringExpensesByDay(_ context.Context, day int) ([]models.Transaction, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.Transaction
	for _, txn := range f.transactions {
		// exact-case type match, like the repository query
		if txn.IsRecurring && txn.Type == models.TypeExpense && txn.Date.Day() == day {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) SumExpensesForMonth(_ context.Context, userID, categoryID primitive.ObjectID, year int, month time.Month) (float64, error) {
	if f.sumErr != nil {
		return 0, f.sumErr
	}
	var total float64
	for _, txn := range f.transactions {
		if txn.UserID != userID || txn.Type != models.TypeExpense {
			continue
		}
		if txn.CategoryID == nil || *txn.CategoryID != categoryID {
			continue
		}
		if txn.Date.Year() == year && txn.Date.Month() == month {
			total += txn.Amount
		}
	}
	return total, nil
}

type fakeNotificationStore struct {
	notifications []models.Notification
	now           time.Time

	createErr error
	existsErr error
	// failType makes CreateNotification fail for one notification type,
	// to exercise per-item isolation.
	failType string
}

func (f *fakeNotificationStore) createdAt() time.Time {
	if f.now.IsZero() {
		return time.Now()
	}
	return f.now
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, notif *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.failType != "" && notif.Type == f.failType {
		return errors.New("store unavailable")
	}
	notif.CreatedAt = f.createdAt()
	f.notifications = append(f.notifications, *notif)
	return nil
}

func (f *fakeNotificationStore) GetNotificationsPage(_ context.Context, userID primitive.ObjectID, offset, limit int64) ([]models.Notification, error) {
	var all []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	if offset >= int64(len(all)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (f *fakeNotificationStore) CountNotifications(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkAsRead(_ context.Context, userID, id primitive.ObjectID) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkManyAsRead(_ context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	for _, id := range ids {
		f.MarkAsRead(context.Background(), userID, id)
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllAsRead(_ context.Context, userID primitive.ObjectID) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) DeleteNotification(_ context.Context, userID, id primitive.ObjectID) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeNotificationStore) DeleteRead(_ context.Context, userID primitive.ObjectID) error {
	var kept []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && n.Read {
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationStore) ReminderExists(_ context.Context, userID primitive.ObjectID, notifType, dedupKey string, year int, month time.Month) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == notifType && n.DedupKey == dedupKey &&
			n.CreatedAt.Year() == year && n.CreatedAt.Month() == month {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationStore) DeleteExpired(_ context.Context) error { return nil }

func (f *fakeNotificationStore) byType(notifType string) []models.Notification {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
	err   error
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	if f.users == nil {
		f.users = make(map[primitive.ObjectID]*models.User)
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) GetUserByVerificationToken(_ context.Context, token string) (*models.User, error) {
	for _, user := range f.users {
		if user.VerifyToken == token {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) UpdateUser(_ context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := update["is_verified"].(bool); ok {
		user.IsVerified = v
	}
	if v, ok := update["username"].(string); ok {
		user.Username = v
	}
	return user, nil
}

type fakeCategoryStore struct {
	categories map[primitive.ObjectID]*models.Category
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, category *models.Category) (*models.Category, error) {
	if f.categories == nil {
		f.categories = make(map[primitive.ObjectID]*models.Category)
	}
	category.ID = primitive.NewObjectID()
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeCategoryStore) GetCategoryByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	if category, ok := f.categories[id]; ok {
		return category, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCategoryStore) GetCategories(_ context.Context, userID primitive.ObjectID) ([]models.Category, error) {
	var out []models.Category
	for _, category := range f.categories {
		if category.UserID == userID {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, userID, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (f *fakeCategoryStore) DeleteCategory(_ context.Context, userID, id primitive.ObjectID) error {
	delete(f.categories, id)
	return nil
}

type fakeBudgetStore struct {
	budgets []models.Budget
}

func (f *fakeBudgetStore) CreateBudget(_ context.Context, budget *models.Budget) (*models.Budget, error) {
	budget.ID = primitive.NewObjectID()
	f.budgets = append(f.budgets, *budget)
	return budget, nil
}

func (f *fakeBudgetStore) GetBudgets(_ context.Context, userID primitive.ObjectID) ([]models.Budget, error) {
	var out []models.Budget
	for _, budget := range f.budgets {
		if budget.UserID == userID {
			out = append(out, budget)
		}
	}
	return out, nil
}

func (f *fakeBudgetStore) GetBudgetForCategory(_ context.Context, userID, categoryID primitive.ObjectID) (*models.Budget, error) {
	for i := range f.budgets {
		if f.budgets[i].UserID == userID && f.budgets[i].CategoryID == categoryID {
			budget := f.budgets[i]
			return &budget, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeBudgetStore) UpdateBudget(_ context.Context, userID, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (f *fakeBudgetStore) DeleteBudget(_ context.Context, userID, id primitive.ObjectID) error {
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
