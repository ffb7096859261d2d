package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"homenet/internal/model"
)

type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) InsertBatch(ctx context.Context, readings []model.SensorReading) error {
	args := m.Called(ctx, readings)
	return args.Error(0)
}

func (m *MockReadingRepository) ListForAsset(ctx context.Context, id, sensorType string, since time.Time) ([]model.SensorReading, error) {
	args := m.Called(ctx, id, sensorType, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SensorReading), args.Error(1)
}

func (m *MockReadingRepository) ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error) {
	args := m.Called(ctx, assetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SensorReading), args.Error(1)
}
