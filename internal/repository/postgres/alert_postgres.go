package postgres

import (
	"context"
	"database/sql"

	"homenet/internal/model"
	"homenet/internal/repository"
)

// AlertPostgres is a PostgreSQL implementation of repository.AlertRepository.
type AlertPostgres struct {
	db *sql.DB
}

// NewAlertPostgres creates a new AlertPostgres repository.
func NewAlertPostgres(db *sql.DB) *AlertPostgres {
	return &AlertPostgres{db: db}
}

var _ repository.AlertRepository = (*AlertPostgres)(nil)

const alertColumns = `alert_id, site_id, building_id, asset_id, asset_type, alert_type, severity, description, value, created_at`

// Create inserts a new alert row and returns the stored record.
func (r *AlertPostgres) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	const q = `
		INSERT INTO alerts (alert_id, site_id, building_id, asset_id, asset_type, alert_type, severity, description, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + alertColumns
	row := r.db.QueryRowContext(ctx, q,
		alert.AlertID,
		alert.SiteID,
		alert.BuildingID,
		alert.AssetID,
		alert.AssetType,
		alert.AlertType,
		alert.Severity,
		alert.Description,
		alert.Value,
		alert.CreatedAt,
	)
	var out model.Alert
	if err := row.Scan(
		&out.AlertID,
		&out.SiteID,
		&out.BuildingID,
		&out.AssetID,
		&out.AssetType,
		&out.AlertType,
		&out.Severity,
		&out.Description,
		&out.Value,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns alerts newest first with optional asset/severity filters.
func (r *AlertPostgres) List(ctx context.Context, f repository.AlertFilter) ([]model.Alert, error) {
	const q = `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE ($1 = '' OR asset_id = $1)
		  AND ($2 = '' OR severity = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, q, f.AssetID, f.Severity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Alert, 0)
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(
			&a.AlertID,
			&a.SiteID,
			&a.BuildingID,
			&a.AssetID,
			&a.AssetType,
			&a.AlertType,
			&a.Severity,
			&a.Description,
			&a.Value,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
