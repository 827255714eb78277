package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedNotifications(store *fakeNotificationStore, userID primitive.ObjectID, count int) {
	for i := 0; i < count; i++ {
		store.notifications = append(store.notifications, models.Notification{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Type:      models.NotifInfo,
			Title:     "Info",
			Message:   fmt.Sprintf("notification %d", i),
			CreatedAt: time.Now(),
		})
	}
}

func TestGetNotificationsPage(t *testing.T) {
	store := &fakeNotificationStore{}
	userID := primitive.NewObjectID()
	seedNotifications(store, userID, 25)
	// Another user's rows must not leak into the page or counts.
	seedNotifications(store, primitive.NewObjectID(), 5)

	store.MarkAsRead(context.Background(), userID, store.notifications[0].ID)

	svc := NewNotificationService(store)

	page, err := svc.GetNotificationsPage(context.Background(), userID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 20)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.Equal(t, int64(24), page.UnreadCount)
	assert.True(t, page.HasMore)

	page, err = svc.GetNotificationsPage(context.Background(), userID, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 5)
	assert.False(t, page.HasMore)
}

func TestGetNotificationsPageDefaults(t *testing.T) {
	store := &fakeNotificationStore{}
	userID := primitive.NewObjectID()
	seedNotifications(store, userID, 3)

	svc := NewNotificationService(store)

	// Out-of-range paging inputs fall back to sane defaults.
	page, err := svc.GetNotificationsPage(context.Background(), userID, 0, -1)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 3)
	assert.False(t, page.HasMore)

	// Empty inbox returns an empty slice, not null.
	empty, err := svc.GetNotificationsPage(context.Background(), primitive.NewObjectID(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
	assert.Empty(t, empty.Notifications)
}

func TestReadStateTransitions(t *testing.T) {
	store := &fakeNotificationStore{}
	userID := primitive.NewObjectID()
	seedNotifications(store, userID, 4)
	svc := NewNotificationService(store)

	ctx := context.Background()

	require.NoError(t, svc.MarkAsRead(ctx, userID, store.notifications[0].ID))
	unread, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	ids := []primitive.ObjectID{store.notifications[1].ID, store.notifications[2].ID}
	require.NoError(t, svc.MarkSelectedAsRead(ctx, userID, ids))
	unread, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkAllAsRead(ctx, userID))
	unread, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Delete-all-read clears the inbox once everything is read.
	require.NoError(t, svc.DeleteRead(ctx, userID))
	total, err := store.CountNotifications(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
