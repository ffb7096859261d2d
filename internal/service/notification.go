package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"homenet/internal/model"
	"homenet/internal/repository"
)

// NotificationService records and lists operator notifications. Delivery
// channels (push, email) are out of scope; records are the contract.
type NotificationService interface {
	// Notify stores a notification record.
	Notify(ctx context.Context, n model.Notification) (*model.Notification, error)

	// NotifyTaskAssigned records an assignment notification for a work order.
	NotifyTaskAssigned(ctx context.Context, task *model.Task, technicianName string) (*model.Notification, error)

	// List returns notifications newest first.
	List(ctx context.Context, buildingID string, unreadOnly bool, limit int) ([]model.Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *notificationService) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	return s.repo.Create(ctx, &n)
}

func (s *notificationService) NotifyTaskAssigned(ctx context.Context, task *model.Task, technicianName string) (*model.Notification, error) {
	return s.Notify(ctx, model.Notification{
		Type:          "task_assigned",
		Title:         "Task assigned: " + task.Title,
		Message:       "Assigned to " + technicianName,
		Severity:      task.Priority,
		BuildingID:    task.BuildingID,
		RelatedTaskID: task.TaskID,
	})
}

func (s *notificationService) List(ctx context.Context, buildingID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	return s.repo.List(ctx, repository.NotificationFilter{
		BuildingID: buildingID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
