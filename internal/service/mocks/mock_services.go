package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"homenet/internal/model"
	"homenet/internal/service"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateWorkOrder(ctx context.Context, in service.CreateWorkOrderInput) (*model.Task, bool, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Task), args.Bool(1), args.Error(2)
}

func (m *MockTaskService) UpdateStatus(ctx context.Context, id, status, notes string) (*model.Task, error) {
	args := m.Called(ctx, id, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, buildingID, status string, limit int) ([]model.Task, error) {
	args := m.Called(ctx, buildingID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

type MockForecastService struct {
	mock.Mock
}

func (m *MockForecastService) ForecastDemand(ctx context.Context, assetID string, horizonHours int) (*model.Forecast, error) {
	args := m.Called(ctx, assetID, horizonHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Forecast), args.Error(1)
}

type MockRiskService struct {
	mock.Mock
}

func (m *MockRiskService) PredictFailureRisk(ctx context.Context, assetID string, horizonHours int) (*model.RiskAssessment, error) {
	args := m.Called(ctx, assetID, horizonHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RiskAssessment), args.Error(1)
}

type MockSupervisorService struct {
	mock.Mock
}

func (m *MockSupervisorService) RunSite(ctx context.Context, siteID string) (*model.SiteReport, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteReport), args.Error(1)
}

type MockRoutingService struct {
	mock.Mock
}

func (m *MockRoutingService) Assign(task *model.Task, actionType string) model.Assignment {
	args := m.Called(task, actionType)
	return args.Get(0).(model.Assignment)
}

func (m *MockRoutingService) Roster() []service.TechnicianLoad {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.TechnicianLoad)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) NotifyTaskAssigned(ctx context.Context, task *model.Task, technicianName string) (*model.Notification, error) {
	args := m.Called(ctx, task, technicianName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, buildingID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, buildingID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReadingService struct {
	mock.Mock
}

func (m *MockReadingService) Ingest(ctx context.Context, readings []model.SensorReading, source string) error {
	args := m.Called(ctx, readings, source)
	return args.Error(0)
}

func (m *MockReadingService) ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error) {
	args := m.Called(ctx, assetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SensorReading), args.Error(1)
}

func (m *MockReadingService) Simulate(ctx context.Context, siteID, assetID string, nRows int) ([]model.SensorReading, error) {
	args := m.Called(ctx, siteID, assetID, nRows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SensorReading), args.Error(1)
}

func (m *MockReadingService) SnapshotSite(ctx context.Context, buildings []string, days int) (string, error) {
	args := m.Called(ctx, buildings, days)
	return args.String(0), args.Error(1)
}
