package model

import "time"

// Risk level classifications for failure-risk assessments.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// RiskMetrics are the latest observed values feeding a risk assessment.
type RiskMetrics struct {
	Vibration   float64 `json:"vibration"`
	Temperature float64 `json:"temperature"`
	Current     float64 `json:"current"`
	FlowRate    float64 `json:"flow_rate"`
	Pressure    float64 `json:"pressure"`
}

// RiskAssessment is the failure-risk estimate for an asset over a horizon.
type RiskAssessment struct {
	AssetID        string      `json:"asset_id"`
	HorizonHours   int         `json:"horizon_hours"`
	RiskScore      float64     `json:"risk_score"`
	RiskLevel      string      `json:"risk_level"`
	Signals        []string    `json:"signals"`
	CurrentMetrics RiskMetrics `json:"current_metrics"`
	WindowStart    time.Time   `json:"window_start"`
	WindowEnd      time.Time   `json:"window_end"`
	ModelName      string      `json:"model_name"`
}
