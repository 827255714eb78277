package services

import (
	"context"
	"fmt"

	"github.com/danabekov/fintrack/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultPageSize = 20

// NotificationService exposes the notification inbox: paginated
// listing, read-state transitions and deletion.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// GetNotificationsPage returns one page of the user's notifications
// together with total and unread counts.
func (s *NotificationService) GetNotificationsPage(ctx context.Context, userID primitive.ObjectID, page, pageSize int64) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize

	notifications, err := s.store.GetNotificationsPage(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	total, err := s.store.CountNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	return &models.NotificationPage{
		Notifications: notifications,
		TotalCount:    total,
		UnreadCount:   unread,
		HasMore:       offset+int64(len(notifications)) < total,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.store.MarkAsRead(ctx, userID, id)
}

func (s *NotificationService) MarkSelectedAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	return s.store.MarkManyAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.store.DeleteNotification(ctx, userID, id)
}

// DeleteRead removes every notification the user has already read.
func (s *NotificationService) DeleteRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.store.DeleteRead(ctx, userID)
}

// CleanupExpired is called by the maintenance cron to drop old rows.
func (s *NotificationService) CleanupExpired(ctx context.Context) error {
	return s.store.DeleteExpired(ctx)
}
