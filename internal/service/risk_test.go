package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homenet/internal/model"
	repoMocks "homenet/internal/repository/mocks"
)

var riskNow = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func newRiskService(repo *repoMocks.MockReadingRepository) *riskService {
	return &riskService{readings: repo, now: func() time.Time { return riskNow }}
}

func channelSeries(assetID, sensorType string, values []float64) []model.SensorReading {
	start := riskNow.Add(-24 * time.Hour)
	step := 24 * time.Hour / time.Duration(len(values))
	out := make([]model.SensorReading, 0, len(values))
	for i, v := range values {
		out = append(out, model.SensorReading{
			AssetID:    assetID,
			SensorType: sensorType,
			Value:      v,
			RecordedAt: start.Add(time.Duration(i) * step),
		})
	}
	return out
}

func constSeries(value float64, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = value
	}
	return vals
}

func TestRiskService_PredictFailureRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("degrading pump scores critical", func(t *testing.T) {
		var readings []model.SensorReading
		readings = append(readings, channelSeries("PUMP_X", model.SensorVibration,
			[]float64{3, 3.5, 4, 5, 6, 7, 8, 9, 9.5, 10})...)
		readings = append(readings, channelSeries("PUMP_X", model.SensorTemperature,
			constSeries(80, 10))...)
		readings = append(readings, channelSeries("PUMP_X", model.SensorFlowRate,
			constSeries(50, 10))...)
		readings = append(readings, channelSeries("PUMP_X", model.SensorCurrent,
			constSeries(12, 10))...)
		readings = append(readings, channelSeries("PUMP_X", model.SensorPressure,
			constSeries(30, 10))...)

		mRepo := new(repoMocks.MockReadingRepository)
		mRepo.On("ListForAsset", ctx, "PUMP_X", "", riskNow.Add(-riskWindow)).
			Return(readings, nil)

		assessment, err := newRiskService(mRepo).PredictFailureRisk(ctx, "PUMP_X", 0)
		require.NoError(t, err)

		assert.Equal(t, defaultRiskHorizonHours, assessment.HorizonHours)
		assert.Equal(t, model.RiskCritical, assessment.RiskLevel)
		assert.GreaterOrEqual(t, assessment.RiskScore, 0.80)
		assert.LessOrEqual(t, assessment.RiskScore, 1.0)
		assert.Equal(t, riskModelName, assessment.ModelName)

		assert.InDelta(t, 10, assessment.CurrentMetrics.Vibration, 1e-9)
		assert.InDelta(t, 80, assessment.CurrentMetrics.Temperature, 1e-9)
		assert.InDelta(t, 50, assessment.CurrentMetrics.FlowRate, 1e-9)
		assert.InDelta(t, 12, assessment.CurrentMetrics.Current, 1e-9)
		assert.InDelta(t, 30, assessment.CurrentMetrics.Pressure, 1e-9)

		assert.NotEmpty(t, assessment.Signals)
		joined := ""
		for _, s := range assessment.Signals {
			joined += s + "\n"
		}
		assert.Contains(t, joined, "Vibration critical")
		assert.Contains(t, joined, "Vibration rising")
		assert.Contains(t, joined, "Temperature elevated")
		assert.Contains(t, joined, "Flow degraded")
	})

	t.Run("healthy pump scores low", func(t *testing.T) {
		var readings []model.SensorReading
		readings = append(readings, channelSeries("PUMP_Y", model.SensorVibration,
			constSeries(3.0, 10))...)
		readings = append(readings, channelSeries("PUMP_Y", model.SensorTemperature,
			constSeries(48, 10))...)
		readings = append(readings, channelSeries("PUMP_Y", model.SensorFlowRate,
			constSeries(180, 10))...)

		mRepo := new(repoMocks.MockReadingRepository)
		mRepo.On("ListForAsset", ctx, "PUMP_Y", "", mock.Anything).
			Return(readings, nil)

		assessment, err := newRiskService(mRepo).PredictFailureRisk(ctx, "PUMP_Y", 48)
		require.NoError(t, err)

		assert.Equal(t, model.RiskLow, assessment.RiskLevel)
		assert.Less(t, assessment.RiskScore, 0.30)
		assert.Equal(t, []string{"All channels within normal range"}, assessment.Signals)
	})

	t.Run("no vibration readings", func(t *testing.T) {
		mRepo := new(repoMocks.MockReadingRepository)
		mRepo.On("ListForAsset", ctx, "PUMP_Z", "", mock.Anything).
			Return([]model.SensorReading{}, nil)

		_, err := newRiskService(mRepo).PredictFailureRisk(ctx, "PUMP_Z", 48)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := newRiskService(new(repoMocks.MockReadingRepository)).PredictFailureRisk(ctx, "", 48)
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.0, model.RiskLow},
		{0.29, model.RiskLow},
		{0.30, model.RiskMedium},
		{0.54, model.RiskMedium},
		{0.55, model.RiskHigh},
		{0.79, model.RiskHigh},
		{0.80, model.RiskCritical},
		{1.0, model.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevel(tt.score), "score %.2f", tt.score)
	}
}

func TestLinearTrend(t *testing.T) {
	assert.InDelta(t, 6, linearTrend([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}), 1e-9)
	assert.InDelta(t, 0, linearTrend([]float64{5, 5, 5, 5, 5, 5}), 1e-9)
	assert.Zero(t, linearTrend([]float64{1, 2}))
}
