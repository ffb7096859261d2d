package model

import "time"

// Asset type values used across readings, alerts, and tasks.
const (
	AssetTypePump = "pump"
	AssetTypeTank = "tank"
	AssetTypeUnit = "unit"
)

// Sensor type names. These match the column names of the historical
// CSV exports so snapshots and live readings stay comparable.
const (
	SensorVibration   = "vibration_mm_s"
	SensorTemperature = "temperature_celsius"
	SensorCurrent     = "current_amps"
	SensorFlowRate    = "flow_rate_lpm"
	SensorPressure    = "pressure_psi"
	SensorTankLevel   = "level_percentage"
	SensorConsumption = "consumption_liters"
)

// SensorReading is a single measurement from (or simulated for) a site asset.
type SensorReading struct {
	ID         string    `json:"id"`
	SiteID     string    `json:"site_id"`
	BuildingID string    `json:"building_id"`
	AssetID    string    `json:"asset_id"`
	AssetType  string    `json:"asset_type"`
	SensorType string    `json:"sensor_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	ReceivedAt time.Time `json:"received_at"`
}
