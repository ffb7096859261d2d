package model

import "time"

// Alert severity values (lowercase, matching the historical alert exports).
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert is a detected anomaly on an asset. Alerts feed work-order creation.
type Alert struct {
	AlertID     string    `json:"alert_id"`
	SiteID      string    `json:"site_id"`
	BuildingID  string    `json:"building_id"`
	AssetID     string    `json:"asset_id"`
	AssetType   string    `json:"asset_type"`
	AlertType   string    `json:"alert_type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Value       float64   `json:"value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
