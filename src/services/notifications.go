package services

import (
	"context"
	"hotelmaint/src/lib"
	"hotelmaint/src/models"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"

	"github.com/google/uuid"
)

// NotificationService only ever touches the caller's own notifications.
type NotificationService struct {
	Store *repository.Store
	Feed  lib.Feed
}

func (n *NotificationService) List(ctx context.Context, sess *session.Session) ([]models.Notification, error) {
	return n.Store.Notifications.ListForUser(ctx, sess.UserID)
}

func (n *NotificationService) MarkRead(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if err := n.Store.Notifications.MarkRead(ctx, sess.UserID, id); err != nil {
		return err
	}
	publishNotification(ctx, n.Feed, "update", id, sess.UserID)
	return nil
}

func (n *NotificationService) MarkAllRead(ctx context.Context, sess *session.Session) (int64, error) {
	count, err := n.Store.Notifications.MarkAllRead(ctx, sess.UserID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		publishNotification(ctx, n.Feed, "update", uuid.Nil, sess.UserID)
	}
	return count, nil
}
