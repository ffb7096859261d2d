package service

import (
	"context"
	"fmt"
	"time"

	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/repository"
)

const (
	defaultRiskHorizonHours = 48
	riskWindow              = 24 * time.Hour
	riskModelName           = "weighted_feature_score_v1"

	vibrationWarnThreshold   = 6.0
	temperatureWarnThreshold = 60.0
	nominalFlowLPM           = 180.0
)

// RiskService scores pump failure risk from recent sensor readings.
type RiskService interface {
	// PredictFailureRisk assesses a pump over the last 24 hours of
	// readings. horizonHours defaults to 48. No readings in the window
	// yields ErrInsufficientData.
	PredictFailureRisk(ctx context.Context, assetID string, horizonHours int) (*model.RiskAssessment, error)
}

type riskService struct {
	readings repository.ReadingRepository
	now      func() time.Time
}

// NewRiskService constructs a new RiskService.
func NewRiskService(readings repository.ReadingRepository) RiskService {
	return &riskService{readings: readings, now: func() time.Time { return time.Now().UTC() }}
}

// channelStats summarizes one sensor channel within the window.
type channelStats struct {
	latest float64
	mean   float64
	max    float64
	trend  float64
	count  int
}

func (s *riskService) PredictFailureRisk(ctx context.Context, assetID string, horizonHours int) (*model.RiskAssessment, error) {
	if assetID == "" {
		return nil, ErrIDRequired
	}
	if horizonHours <= 0 {
		horizonHours = defaultRiskHorizonHours
	}

	now := s.now()
	windowStart := now.Add(-riskWindow)
	readings, err := s.readings.ListForAsset(ctx, assetID, "", windowStart)
	if err != nil {
		return nil, err
	}

	channels := groupChannels(readings)
	vib, hasVib := channels[model.SensorVibration]
	if !hasVib || vib.count == 0 {
		return nil, ErrInsufficientData
	}
	temp := channels[model.SensorTemperature]
	current := channels[model.SensorCurrent]
	flow := channels[model.SensorFlowRate]
	pressure := channels[model.SensorPressure]

	score, signals := scoreRisk(vib, temp, flow)
	level := riskLevel(score)
	metrics.RiskAssessments.WithLabelValues(level).Inc()

	return &model.RiskAssessment{
		AssetID:      assetID,
		HorizonHours: horizonHours,
		RiskScore:    score,
		RiskLevel:    level,
		Signals:      signals,
		CurrentMetrics: model.RiskMetrics{
			Vibration:   vib.latest,
			Temperature: temp.latest,
			Current:     current.latest,
			FlowRate:    flow.latest,
			Pressure:    pressure.latest,
		},
		WindowStart: windowStart,
		WindowEnd:   now,
		ModelName:   riskModelName,
	}, nil
}

// groupChannels folds readings into per-channel stats. Readings arrive
// ordered by recorded_at ascending, so the last value seen is the latest.
func groupChannels(readings []model.SensorReading) map[string]channelStats {
	type acc struct {
		values []float64
	}
	byType := make(map[string]*acc)
	for _, r := range readings {
		a, ok := byType[r.SensorType]
		if !ok {
			a = &acc{}
			byType[r.SensorType] = a
		}
		a.values = append(a.values, r.Value)
	}

	out := make(map[string]channelStats, len(byType))
	for sensorType, a := range byType {
		st := channelStats{count: len(a.values)}
		st.latest = a.values[len(a.values)-1]
		var sum float64
		for _, v := range a.values {
			sum += v
			if v > st.max {
				st.max = v
			}
		}
		st.mean = sum / float64(len(a.values))
		st.trend = linearTrend(a.values)
		out[sensorType] = st
	}
	return out
}

// linearTrend approximates drift as the mean of the last third minus the
// mean of the first third of the series.
func linearTrend(values []float64) float64 {
	if len(values) < 3 {
		return 0
	}
	third := len(values) / 3
	meanOf := func(vals []float64) float64 {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}
	return meanOf(values[len(values)-third:]) - meanOf(values[:third])
}

// scoreRisk combines weighted features into a [0,1] score and collects
// a human-readable signal per contributing feature.
func scoreRisk(vib, temp, flow channelStats) (float64, []string) {
	var score float64
	signals := make([]string, 0, 4)

	// Vibration magnitude dominates the score; 12 mm/s is destructive.
	vibComponent := clamp01(vib.latest/12.0) * 0.35
	score += vibComponent
	if vib.latest > vibrationWarnThreshold {
		score += 0.10
		signals = append(signals, fmt.Sprintf("Vibration critical: %.1f mm/s (threshold %.1f)", vib.latest, vibrationWarnThreshold))
	}
	if vib.trend > 0.5 {
		score += clamp01(vib.trend/5.0) * 0.15
		signals = append(signals, fmt.Sprintf("Vibration rising: +%.1f mm/s over window", vib.trend))
	}

	if temp.count > 0 {
		score += clamp01(temp.latest/100.0) * 0.20
		if temp.latest > temperatureWarnThreshold {
			score += 0.10
			signals = append(signals, fmt.Sprintf("Temperature elevated: %.1f C (threshold %.1f)", temp.latest, temperatureWarnThreshold))
		}
	}

	if flow.count > 0 && flow.latest < nominalFlowLPM {
		deficit := clamp01((nominalFlowLPM - flow.latest) / nominalFlowLPM)
		score += deficit * 0.10
		if deficit > 0.2 {
			signals = append(signals, fmt.Sprintf("Flow degraded: %.1f lpm (nominal %.0f)", flow.latest, nominalFlowLPM))
		}
	}

	if len(signals) == 0 {
		signals = append(signals, "All channels within normal range")
	}
	return clamp01(score), signals
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func riskLevel(score float64) string {
	switch {
	case score >= 0.80:
		return model.RiskCritical
	case score >= 0.55:
		return model.RiskHigh
	case score >= 0.30:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
