package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/danabekov/fintrack/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationTTL = 30 * 24 * time.Hour

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(notificationTTL)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		notif.ID = id
	}
	return nil
}

// GetNotificationsPage returns one page of a user's notifications,
// newest first.
func (r *NotificationRepository) GetNotificationsPage(ctx context.Context, userID primitive.ObjectID, offset, limit int64) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// CountNotifications returns the total number of a user's notifications.
func (r *NotificationRepository) CountNotifications(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

// CountUnread returns how many of a user's notifications are unread.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkAsRead sets one notification's read flag.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// MarkManyAsRead sets the read flag on the selected notifications.
func (r *NotificationRepository) MarkManyAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// MarkAllAsRead sets the read flag on every notification of the user.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteNotification deletes a single notification.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	return err
}

// DeleteRead deletes every notification the user has already read.
func (r *NotificationRepository) DeleteRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "read": true})
	return err
}

// ReminderExists reports whether a notification of the given type with
// the same dedup key was already created for the user in the given
// calendar month. This is the anti-spam guard for bill reminders.
func (r *NotificationRepository) ReminderExists(ctx context.Context, userID primitive.ObjectID, notifType, dedupKey string, year int, month time.Month) (bool, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	filter := bson.M{
		"user_id":   userID,
		"type":      notifType,
		"dedup_key": dedupKey,
		"created_at": bson.M{
			"$gte": monthStart,
			"$lt":  monthStart.AddDate(0, 1, 0),
		},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing reminder: %v", err)
	}
	return count > 0, nil
}

// DeleteExpired removes notifications past their expiry timestamp.
func (r *NotificationRepository) DeleteExpired(ctx context.Context) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	}
	return nil
}
