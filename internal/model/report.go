package model

import "time"

// Assignment records the routing outcome for one created task.
// Status is "assigned" when a technician took the task, "escalated"
// when nobody was available.
type Assignment struct {
	TaskID         string    `json:"task_id"`
	TaskTitle      string    `json:"task_title"`
	TechnicianID   string    `json:"technician_id,omitempty"`
	TechnicianName string    `json:"technician_name"`
	Priority       string    `json:"priority"`
	SLAHours       int       `json:"sla_hours"`
	AssignedAt     time.Time `json:"assigned_at"`
	Status         string    `json:"status"`
}

// AssetDetail is the per-asset outcome of a supervisor run.
type AssetDetail struct {
	AssetID    string  `json:"asset_id"`
	RiskScore  float64 `json:"risk_score"`
	RiskLevel  string  `json:"risk_level"`
	Priority   string  `json:"priority"`
	ActionType string  `json:"action_type"`
	Reasoning  string  `json:"reasoning"`
	TaskID     string  `json:"task_id,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// BuildingForecastSummary is the per-building demand outcome of a supervisor run.
type BuildingForecastSummary struct {
	BuildingID    string  `json:"building_id"`
	DemandLevel   string  `json:"demand_level"`
	ForecastTotal float64 `json:"forecast_total"`
	TaskID        string  `json:"task_id,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// SiteReport is the summary returned by a full supervisor run over a site.
type SiteReport struct {
	SiteID        string                    `json:"site_id"`
	SiteName      string                    `json:"site_name"`
	Timestamp     time.Time                 `json:"timestamp"`
	PumpsAnalyzed int                       `json:"pumps_analyzed"`
	CriticalCount int                       `json:"critical_count"`
	HighCount     int                       `json:"high_count"`
	MediumCount   int                       `json:"medium_count"`
	LowCount      int                       `json:"low_count"`
	TasksCreated  []Task                    `json:"tasks_created"`
	Assignments   []Assignment              `json:"assignments"`
	Details       []AssetDetail             `json:"details"`
	Forecasts     []BuildingForecastSummary `json:"forecasts"`
}
