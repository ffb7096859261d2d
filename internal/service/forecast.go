package service

import (
	"context"
	"math"
	"sort"
	"time"

	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/repository"
)

const (
	defaultHorizonHours = 24
	maxHorizonHours     = 168
	minHistoryPoints    = 24
	historyWindow       = 14 * 24 * time.Hour
	forecastModelName   = "seasonal_profile_v1"
)

// ForecastService computes hourly water demand forecasts from stored
// consumption readings.
type ForecastService interface {
	// ForecastDemand forecasts consumption for an asset or building over
	// the horizon. Fewer than 24 historical points yields ErrInsufficientData.
	ForecastDemand(ctx context.Context, assetID string, horizonHours int) (*model.Forecast, error)
}

type forecastService struct {
	readings repository.ReadingRepository
	now      func() time.Time
}

// NewForecastService constructs a new ForecastService.
func NewForecastService(readings repository.ReadingRepository) ForecastService {
	return &forecastService{readings: readings, now: func() time.Time { return time.Now().UTC() }}
}

func (s *forecastService) ForecastDemand(ctx context.Context, assetID string, horizonHours int) (*model.Forecast, error) {
	if assetID == "" {
		return nil, ErrIDRequired
	}
	if horizonHours <= 0 {
		horizonHours = defaultHorizonHours
	}
	if horizonHours > maxHorizonHours {
		horizonHours = maxHorizonHours
	}

	now := s.now()
	history, err := s.readings.ListForAsset(ctx, assetID, model.SensorConsumption, now.Add(-historyWindow))
	if err != nil {
		return nil, err
	}
	if len(history) < minHistoryPoints {
		return nil, ErrInsufficientData
	}

	profile, residualSigma, capacityBaseline := buildHourProfile(history)

	start := now.Truncate(time.Hour).Add(time.Hour)
	series := make([]model.ForecastPoint, 0, horizonHours)
	var total float64
	for i := 0; i < horizonHours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		value := profile[ts.Hour()]
		lower := value - 1.64*residualSigma
		if lower < 0 {
			lower = 0
		}
		series = append(series, model.ForecastPoint{
			Timestamp: ts,
			Value:     value,
			Lower:     lower,
			Upper:     value + 1.64*residualSigma,
		})
		total += value
	}

	sorted := make([]model.ForecastPoint, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	top3 := sorted
	if len(top3) > 3 {
		top3 = top3[:3]
	}
	peak := sorted[0]

	level := demandLevel(peak.Value, capacityBaseline)
	metrics.ForecastsServed.WithLabelValues(level).Inc()

	return &model.Forecast{
		AssetID:        assetID,
		HorizonHours:   horizonHours,
		PredictionTime: now,
		ForecastStart:  series[0].Timestamp,
		ForecastEnd:    series[len(series)-1].Timestamp,
		ForecastTotal:  total,
		DemandLevel:    level,
		Recommendation: recommendationFor(level),
		PeakHour:       &peak,
		Top3Hours:      top3,
		Series:         series,
		ModelName:      forecastModelName,
	}, nil
}

// buildHourProfile computes the mean consumption per hour of day, the
// residual standard deviation around that profile, and the observed
// capacity baseline (maximum historical value).
func buildHourProfile(history []model.SensorReading) (profile [24]float64, sigma, baseline float64) {
	var sums, counts [24]float64
	var overallSum float64
	for _, r := range history {
		h := r.RecordedAt.Hour()
		sums[h] += r.Value
		counts[h]++
		overallSum += r.Value
		if r.Value > baseline {
			baseline = r.Value
		}
	}
	overallMean := overallSum / float64(len(history))
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			profile[h] = sums[h] / counts[h]
		} else {
			profile[h] = overallMean
		}
	}

	var sq float64
	for _, r := range history {
		d := r.Value - profile[r.RecordedAt.Hour()]
		sq += d * d
	}
	sigma = math.Sqrt(sq / float64(len(history)))
	return profile, sigma, baseline
}

func demandLevel(peakValue, capacityBaseline float64) string {
	if capacityBaseline <= 0 {
		return model.DemandLow
	}
	pct := peakValue / capacityBaseline * 100
	switch {
	case pct >= 95:
		return model.DemandCritical
	case pct >= 85:
		return model.DemandHigh
	case pct >= 70:
		return model.DemandNormal
	default:
		return model.DemandLow
	}
}

func recommendationFor(level string) string {
	switch level {
	case model.DemandCritical:
		return "Immediate action required: demand approaching capacity, activate backup supply"
	case model.DemandHigh:
		return "Prepare backup systems and monitor closely during peak hours"
	case model.DemandNormal:
		return "Demand within expected range, continue standard monitoring"
	default:
		return "Demand well below capacity, no action needed"
	}
}
