package repository

import (
	"context"

	"homenet/internal/model"
)

// AlertFilter narrows alert listings. Zero values mean "no filter".
type AlertFilter struct {
	AssetID  string
	Severity string
	Limit    int
}

// AlertRepository defines data access for detected alerts.
type AlertRepository interface {
	// Create inserts a new alert record and returns the stored row.
	Create(ctx context.Context, alert *model.Alert) (*model.Alert, error)

	// List returns alerts matching the filter, newest first.
	List(ctx context.Context, f AlertFilter) ([]model.Alert, error)
}
