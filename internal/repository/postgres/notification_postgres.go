package postgres

import (
	"context"
	"database/sql"

	"homenet/internal/model"
	"homenet/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

const notificationColumns = `id, type, title, message, severity, building_id, related_task_id, read, created_at`

// Create inserts a new notification row and returns the stored record.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, type, title, message, severity, building_id, related_task_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + notificationColumns
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.Type,
		n.Title,
		n.Message,
		n.Severity,
		n.BuildingID,
		n.RelatedTaskID,
		n.Read,
		n.CreatedAt,
	)
	var out model.Notification
	if err := row.Scan(
		&out.ID,
		&out.Type,
		&out.Title,
		&out.Message,
		&out.Severity,
		&out.BuildingID,
		&out.RelatedTaskID,
		&out.Read,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns notifications newest first with optional filters.
func (r *NotificationPostgres) List(ctx context.Context, f repository.NotificationFilter) ([]model.Notification, error) {
	const q = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ($1 = '' OR building_id = $1)
		  AND ($2 = FALSE OR read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, q, f.BuildingID, f.UnreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Severity,
			&n.BuildingID,
			&n.RelatedTaskID,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flags a notification as read.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET read = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
