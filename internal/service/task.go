package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/repository"
)

// CreateWorkOrderInput carries the fields needed to open a work order,
// typically derived from an alert.
type CreateWorkOrderInput struct {
	Title       string
	Description string
	AssetType   string
	AssetID     string
	BuildingID  string
	Priority    string
	SLAHours    int
	AssigneeID  string
}

// TaskService defines the use cases for maintenance work orders.
type TaskService interface {
	// CreateWorkOrder opens a work order, or returns the existing OPEN
	// duplicate for the same title/asset/building. The bool reports
	// whether a new task was inserted.
	CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (*model.Task, bool, error)

	// UpdateStatus moves a task through its lifecycle. Only
	// OPEN -> IN_PROGRESS/CANCELLED and IN_PROGRESS -> DONE/CANCELLED
	// are allowed.
	UpdateStatus(ctx context.Context, id, status, notes string) (*model.Task, error)

	// Get returns a single task by its ID.
	Get(ctx context.Context, id string) (*model.Task, error)

	// List returns tasks newest first with optional building/status filters.
	List(ctx context.Context, buildingID, status string, limit int) ([]model.Task, error)
}

type taskService struct {
	repo   repository.TaskRepository
	notify NotificationService
	now    func() time.Time
}

// NewTaskService constructs a new TaskService. notify may be nil;
// assignee notifications are then skipped.
func NewTaskService(repo repository.TaskRepository, notify NotificationService) TaskService {
	return &taskService{repo: repo, notify: notify, now: func() time.Time { return time.Now().UTC() }}
}

var allowedTransitions = map[string][]string{
	model.TaskStatusOpen:       {model.TaskStatusInProgress, model.TaskStatusCancelled},
	model.TaskStatusInProgress: {model.TaskStatusDone, model.TaskStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// makeID builds ids like TASK_1A2B3C4D.
func makeID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + strings.ToUpper(hex[:8])
}

func (s *taskService) CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (*model.Task, bool, error) {
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return nil, false, ErrInvalidPriority
	}
	// Title and description fall back to the alert fields when callers
	// pass only the asset reference.
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		if in.AssetID == "" {
			return nil, false, ErrTitleRequired
		}
		in.Title = fmt.Sprintf("%s: Inspect %s", in.Priority, in.AssetID)
	}
	if in.Description == "" && in.AssetID != "" {
		in.Description = fmt.Sprintf("Work order opened for %s", in.AssetID)
	}
	if in.SLAHours <= 0 {
		in.SLAHours = 24
	}

	existing, err := s.repo.FindOpenDuplicate(ctx, in.Title, in.AssetID, in.BuildingID)
	if err == nil {
		metrics.WorkOrdersDeduplicated.Inc()
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	now := s.now()
	task := &model.Task{
		TaskID:      makeID("TASK"),
		Title:       in.Title,
		Description: in.Description,
		AssetType:   in.AssetType,
		AssetID:     in.AssetID,
		BuildingID:  in.BuildingID,
		Priority:    in.Priority,
		SLAHours:    in.SLAHours,
		Status:      model.TaskStatusOpen,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, false, err
	}
	metrics.WorkOrdersCreated.WithLabelValues(stored.Priority).Inc()
	// Direct assignments notify the assignee. Failures never fail the create.
	if in.AssigneeID != "" && s.notify != nil {
		s.notify.NotifyTaskAssigned(ctx, stored, in.AssigneeID)
	}
	return stored, true, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id, status, notes string) (*model.Task, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !model.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !transitionAllowed(current.Status, status) {
		return nil, ErrInvalidTransition
	}

	merged := current.Notes
	if notes != "" {
		if merged != "" {
			merged += "\n"
		}
		merged += notes
	}
	return s.repo.UpdateStatus(ctx, id, status, merged, s.now())
}

func (s *taskService) Get(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, buildingID, status string, limit int) ([]model.Task, error) {
	if status != "" && !model.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, repository.TaskFilter{
		BuildingID: buildingID,
		Status:     status,
		Limit:      limit,
	})
}
