package model

import "time"

// Demand level classifications relative to the capacity baseline.
const (
	DemandLow      = "LOW"
	DemandNormal   = "NORMAL"
	DemandHigh     = "HIGH"
	DemandCritical = "CRITICAL"
)

// ForecastPoint is one hourly step of a demand forecast with its
// confidence band.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// Forecast is the full demand forecast for an asset over a horizon.
type Forecast struct {
	AssetID        string          `json:"asset_id"`
	HorizonHours   int             `json:"horizon_hours"`
	PredictionTime time.Time       `json:"prediction_time"`
	ForecastStart  time.Time       `json:"forecast_start"`
	ForecastEnd    time.Time       `json:"forecast_end"`
	ForecastTotal  float64         `json:"forecast_total"`
	DemandLevel    string          `json:"demand_level"`
	Recommendation string          `json:"recommendation"`
	PeakHour       *ForecastPoint  `json:"peak_hour,omitempty"`
	Top3Hours      []ForecastPoint `json:"top_3_hours"`
	Series         []ForecastPoint `json:"forecast_series"`
	ModelName      string          `json:"model_name"`
}
