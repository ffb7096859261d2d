package postgres

import (
	"context"
	"database/sql"
	"time"

	"homenet/internal/model"
	"homenet/internal/repository"
)

// ReadingPostgres is a PostgreSQL implementation of repository.ReadingRepository.
type ReadingPostgres struct {
	db *sql.DB
}

// NewReadingPostgres creates a new ReadingPostgres repository.
func NewReadingPostgres(db *sql.DB) *ReadingPostgres {
	return &ReadingPostgres{db: db}
}

var _ repository.ReadingRepository = (*ReadingPostgres)(nil)

const readingColumns = `id, site_id, building_id, asset_id, asset_type, sensor_type, value, unit, recorded_at, received_at`

// InsertBatch stores all readings within one transaction so a partial
// simulator or MQTT batch never lands.
func (r *ReadingPostgres) InsertBatch(ctx context.Context, readings []model.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO sensor_readings (id, site_id, building_id, asset_id, asset_type, sensor_type, value, unit, recorded_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rd := range readings {
		if _, err := stmt.ExecContext(ctx,
			rd.ID,
			rd.SiteID,
			rd.BuildingID,
			rd.AssetID,
			rd.AssetType,
			rd.SensorType,
			rd.Value,
			rd.Unit,
			rd.RecordedAt,
			rd.ReceivedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListForAsset returns readings for an asset or building since a point in time.
func (r *ReadingPostgres) ListForAsset(ctx context.Context, id, sensorType string, since time.Time) ([]model.SensorReading, error) {
	const q = `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE (asset_id = $1 OR building_id = $1)
		  AND ($2 = '' OR sensor_type = $2)
		  AND recorded_at >= $3
		ORDER BY recorded_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, id, sensorType, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

// ListRecent returns the newest readings for an asset.
func (r *ReadingPostgres) ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error) {
	const q = `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE asset_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, q, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

func collectReadings(rows *sql.Rows) ([]model.SensorReading, error) {
	items := make([]model.SensorReading, 0)
	for rows.Next() {
		var rd model.SensorReading
		if err := rows.Scan(
			&rd.ID,
			&rd.SiteID,
			&rd.BuildingID,
			&rd.AssetID,
			&rd.AssetType,
			&rd.SensorType,
			&rd.Value,
			&rd.Unit,
			&rd.RecordedAt,
			&rd.ReceivedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
