package repository

import (
	"context"
	"time"

	"homenet/internal/model"
)

// TaskFilter narrows task listings. Zero values mean "no filter".
type TaskFilter struct {
	BuildingID string
	Status     string
	Limit      int
}

// TaskRepository defines data access for work-order tasks using SQL queries only.
// No business logic here, strictly persistence operations.
type TaskRepository interface {
	// Create inserts a new task record and returns the stored row.
	Create(ctx context.Context, task *model.Task) (*model.Task, error)

	// FindByID returns a task by its ID.
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// FindOpenDuplicate returns an OPEN task matching title (case-insensitive),
	// asset, and building, or sql.ErrNoRows when none exists.
	FindOpenDuplicate(ctx context.Context, title, assetID, buildingID string) (*model.Task, error)

	// List returns tasks matching the filter, newest first.
	List(ctx context.Context, f TaskFilter) ([]model.Task, error)

	// UpdateStatus sets status/notes/updated_at on a task and returns the
	// updated row, or sql.ErrNoRows when the task does not exist.
	UpdateStatus(ctx context.Context, id, status, notes string, updatedAt time.Time) (*model.Task, error)
}
