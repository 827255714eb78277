package services

import (
	"context"
	"fmt"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/danabekov/fintrack/pkg/email"
	"github.com/sirupsen/logrus"
)

// ReminderService scans recurring expense bills and emits same-day and
// advance reminders, at most once per user/bill/month.
type ReminderService struct {
	transactions  TransactionStore
	notifications NotificationStore
	users         UserStore
	mail          email.Sender
	leadDays      int
}

func NewReminderService(transactions TransactionStore, notifications NotificationStore, users UserStore, mail email.Sender, leadDays int) *ReminderService {
	if leadDays <= 0 {
		leadDays = 7
	}
	return &ReminderService{
		transactions:  transactions,
		notifications: notifications,
		users:         users,
		mail:          mail,
		leadDays:      leadDays,
	}
}

// RunReminderSweep runs the same-day pass and the advance pass for the
// given day. Every failure is logged and contained to its own bill;
// nothing escapes the sweep.
func (s *ReminderService) RunReminderSweep(ctx context.Context, today time.Time) {
	s.runPass(ctx, today, today.Day(), models.NotifBillReminder, "Bill Reminder",
		func(bill *models.Transaction) string {
			return fmt.Sprintf("%s of %.2f %s is due today.", bill.Description, bill.Amount, bill.Currency)
		})

	target := today.AddDate(0, 0, s.leadDays)
	s.runPass(ctx, today, target.Day(), models.NotifBillAdvance, "Upcoming Bill",
		func(bill *models.Transaction) string {
			return fmt.Sprintf("%s of %.2f %s is due in %d days.", bill.Description, bill.Amount, bill.Currency, s.leadDays)
		})
}

func (s *ReminderService) runPass(ctx context.Context, today time.Time, dayOfMonth int, notifType, title string, message func(*models.Transaction) string) {
	// Day-of-month matching is deliberately loose: it spans every
	// month and year, so bills recorded as plain historical postings
	// still trigger reminders. The per-month dedup below keeps the
	// repeats out.
	bills, err := s.transactions.GetRecurringExpensesByDay(ctx, dayOfMonth)
	if err != nil {
		logrus.WithError(err).WithField("type", notifType).Error("Reminder sweep failed to fetch bills")
		return
	}

	for _, bill := range latestPerBill(bills) {
		key := models.ReminderDedupKey(bill.Description)
		exists, err := s.notifications.ReminderExists(ctx, bill.UserID, notifType, key, today.Year(), today.Month())
		if err != nil {
			logrus.WithError(err).WithField("user_id", bill.UserID.Hex()).Warn("Failed to check existing reminder")
			continue
		}
		if exists {
			continue
		}

		msg := message(&bill)
		notif := &models.Notification{
			UserID:   bill.UserID,
			Type:     notifType,
			Title:    title,
			Message:  msg,
			DedupKey: key,
		}
		if err := s.notifications.CreateNotification(ctx, notif); err != nil {
			// Dedup key was never written, so this bill retries on
			// the next sweep. Other bills keep processing.
			logrus.WithError(err).WithField("user_id", bill.UserID.Hex()).Warn("Failed to persist bill reminder")
			continue
		}

		s.emailUser(ctx, &bill, title, msg)
	}
}

// latestPerBill collapses the matched rows to one representative per
// (user, description): the most recent posting. The same bill
// description typically appears many times in transaction history.
func latestPerBill(bills []models.Transaction) []models.Transaction {
	type billKey struct {
		user        string
		description string
	}

	latest := make(map[billKey]models.Transaction)
	order := make([]billKey, 0, len(bills))
	for _, bill := range bills {
		key := billKey{user: bill.UserID.Hex(), description: bill.Description}
		current, ok := latest[key]
		if !ok {
			order = append(order, key)
			latest[key] = bill
			continue
		}
		if bill.Date.After(current.Date) {
			latest[key] = bill
		}
	}

	representatives := make([]models.Transaction, 0, len(order))
	for _, key := range order {
		representatives = append(representatives, latest[key])
	}
	return representatives
}

func (s *ReminderService) emailUser(ctx context.Context, bill *models.Transaction, subject, body string) {
	user, err := s.users.GetUserByID(ctx, bill.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", bill.UserID.Hex()).Warn("Failed to look up user for reminder email")
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.mail.Send(user.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("user_id", bill.UserID.Hex()).Warn("Failed to send reminder email")
	}
}
