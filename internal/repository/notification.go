package repository

import (
	"context"

	"homenet/internal/model"
)

// NotificationFilter narrows notification listings. Zero values mean "no filter".
type NotificationFilter struct {
	BuildingID string
	UnreadOnly bool
	Limit      int
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	// Create inserts a new notification record and returns the stored row.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// List returns notifications matching the filter, newest first.
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, error)

	// MarkRead flags a notification as read, or sql.ErrNoRows when it does not exist.
	MarkRead(ctx context.Context, id string) error
}
