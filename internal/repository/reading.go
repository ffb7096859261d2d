package repository

import (
	"context"
	"time"

	"homenet/internal/model"
)

// ReadingRepository defines data access for sensor readings.
type ReadingRepository interface {
	// InsertBatch stores readings in a single transaction.
	InsertBatch(ctx context.Context, readings []model.SensorReading) error

	// ListForAsset returns readings where the asset or its building matches id,
	// optionally restricted to one sensor type, recorded at or after since,
	// ordered by recorded_at ascending.
	ListForAsset(ctx context.Context, id, sensorType string, since time.Time) ([]model.SensorReading, error)

	// ListRecent returns the newest readings for an asset, newest first.
	ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error)
}
