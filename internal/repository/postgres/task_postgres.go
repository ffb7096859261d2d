package postgres

import (
	"context"
	"database/sql"
	"time"

	"homenet/internal/model"
	"homenet/internal/repository"
)

// TaskPostgres is a PostgreSQL implementation of repository.TaskRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type TaskPostgres struct {
	db *sql.DB
}

// NewTaskPostgres creates a new TaskPostgres repository.
func NewTaskPostgres(db *sql.DB) *TaskPostgres {
	return &TaskPostgres{db: db}
}

var _ repository.TaskRepository = (*TaskPostgres)(nil)

const taskColumns = `task_id, title, description, asset_type, asset_id, building_id, priority, sla_hours, status, assignee_id, created_at, updated_at, notes`

func scanTask(row interface{ Scan(dest ...any) error }) (*model.Task, error) {
	var t model.Task
	if err := row.Scan(
		&t.TaskID,
		&t.Title,
		&t.Description,
		&t.AssetType,
		&t.AssetID,
		&t.BuildingID,
		&t.Priority,
		&t.SLAHours,
		&t.Status,
		&t.AssigneeID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Notes,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new task row and returns the stored record.
func (r *TaskPostgres) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	const q = `
		INSERT INTO tasks (task_id, title, description, asset_type, asset_id, building_id, priority, sla_hours, status, assignee_id, created_at, updated_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + taskColumns
	row := r.db.QueryRowContext(ctx, q,
		task.TaskID,
		task.Title,
		task.Description,
		task.AssetType,
		task.AssetID,
		task.BuildingID,
		task.Priority,
		task.SLAHours,
		task.Status,
		task.AssigneeID,
		task.CreatedAt,
		task.UpdatedAt,
		task.Notes,
	)
	return scanTask(row)
}

// FindByID fetches a single task by its ID.
func (r *TaskPostgres) FindByID(ctx context.Context, id string) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1`
	return scanTask(r.db.QueryRowContext(ctx, q, id))
}

// FindOpenDuplicate fetches an OPEN task for the same title/asset/building.
// Title matching is case-insensitive to mirror how alerts re-fire with
// slightly different casing.
func (r *TaskPostgres) FindOpenDuplicate(ctx context.Context, title, assetID, buildingID string) (*model.Task, error) {
	const q = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = 'OPEN' AND title ILIKE $1 AND asset_id = $2 AND building_id = $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanTask(r.db.QueryRowContext(ctx, q, title, assetID, buildingID))
}

// List returns tasks newest first with optional building/status filters.
func (r *TaskPostgres) List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	const q = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ($1 = '' OR building_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, task_id DESC
		LIMIT $3
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, q, f.BuildingID, f.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets status, appends notes, bumps updated_at, and returns the row.
func (r *TaskPostgres) UpdateStatus(ctx context.Context, id, status, notes string, updatedAt time.Time) (*model.Task, error) {
	const q = `
		UPDATE tasks
		SET status = $2, notes = $3, updated_at = $4
		WHERE task_id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, q, id, status, notes, updatedAt))
}
