package cron

import (
	"context"

	"github.com/danabekov/fintrack/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceCronJobs schedules the calendar-based housekeeping
// that does not need the worker's injected clock.
func StartMaintenanceCronJobs(notificationService *services.NotificationService) *cron.Cron {
	c := cron.New()

	// Purge expired notifications nightly
	c.AddFunc("0 3 * * *", func() {
		if err := notificationService.CleanupExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("CleanupExpired failed")
		}
	})

	c.Start()
	return c
}
