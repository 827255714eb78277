package services

import (
	"context"
	"fmt"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/sirupsen/logrus"
)

// RecurringService materializes due recurring templates into concrete
// transaction postings.
type RecurringService struct {
	transactions TransactionStore
}

func NewRecurringService(transactions TransactionStore) *RecurringService {
	return &RecurringService{transactions: transactions}
}

// MaterializeDueRecurring creates one posting for every template whose
// next occurrence is exactly asOf (date precision) and advances each
// template by its frequency. The whole batch is persisted in one store
// call; on failure nothing is advanced and the templates stay due, so
// the next cycle retries naturally.
func (s *RecurringService) MaterializeDueRecurring(ctx context.Context, asOf time.Time) (int, error) {
	due := DateOf(asOf)

	templates, err := s.transactions.GetDueTemplates(ctx, due)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due templates: %w", err)
	}
	if len(templates) == 0 {
		return 0, nil
	}

	instances := make([]models.Transaction, 0, len(templates))
	advances := make([]models.TemplateAdvance, 0, len(templates))
	for i := range templates {
		template := &templates[i]
		instances = append(instances, *template.Materialize(due))
		advances = append(advances, models.TemplateAdvance{
			TemplateID: template.ID,
			NextDate:   template.RecurringFrequency.Next(due),
		})
	}

	if err := s.transactions.ApplyMaterialization(ctx, instances, advances); err != nil {
		return 0, fmt.Errorf("failed to materialize recurring transactions: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"count": len(instances),
		"as_of": due.Format("2006-01-02"),
	}).Info("Materialized recurring transactions")
	return len(instances), nil
}

// DateOf truncates a timestamp to midnight UTC. Due-date matching and
// next-occurrence advancement both operate on whole dates.
func DateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
