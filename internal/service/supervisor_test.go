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

// Collaborator mocks are defined locally: importing service/mocks from an
// in-package test would create an import cycle back into this package.
type riskServiceMock struct{ mock.Mock }

func (m *riskServiceMock) PredictFailureRisk(ctx context.Context, assetID string, horizonHours int) (*model.RiskAssessment, error) {
	args := m.Called(ctx, assetID, horizonHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RiskAssessment), args.Error(1)
}

type forecastServiceMock struct{ mock.Mock }

func (m *forecastServiceMock) ForecastDemand(ctx context.Context, assetID string, horizonHours int) (*model.Forecast, error) {
	args := m.Called(ctx, assetID, horizonHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Forecast), args.Error(1)
}

type taskServiceMock struct{ mock.Mock }

func (m *taskServiceMock) CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (*model.Task, bool, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Task), args.Bool(1), args.Error(2)
}

func (m *taskServiceMock) UpdateStatus(ctx context.Context, id, status, notes string) (*model.Task, error) {
	args := m.Called(ctx, id, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *taskServiceMock) Get(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *taskServiceMock) List(ctx context.Context, buildingID, status string, limit int) ([]model.Task, error) {
	args := m.Called(ctx, buildingID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

type routingServiceMock struct{ mock.Mock }

func (m *routingServiceMock) Assign(task *model.Task, actionType string) model.Assignment {
	args := m.Called(task, actionType)
	return args.Get(0).(model.Assignment)
}

func (m *routingServiceMock) Roster() []TechnicianLoad {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]TechnicianLoad)
}

type notificationServiceMock struct{ mock.Mock }

func (m *notificationServiceMock) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *notificationServiceMock) NotifyTaskAssigned(ctx context.Context, task *model.Task, technicianName string) (*model.Notification, error) {
	args := m.Called(ctx, task, technicianName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *notificationServiceMock) List(ctx context.Context, buildingID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, buildingID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *notificationServiceMock) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var supervisorNow = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

func assessmentFor(assetID string, score float64, level string) *model.RiskAssessment {
	return &model.RiskAssessment{
		AssetID:   assetID,
		RiskScore: score,
		RiskLevel: level,
		Signals:   []string{"Vibration critical: 8.5 mm/s (threshold 6.0)", "Temperature elevated: 67.0 C (threshold 60.0)", "Flow degraded"},
	}
}

func TestSupervisorService_RunSite(t *testing.T) {
	ctx := context.Background()

	mRisk := new(riskServiceMock)
	mRisk.On("PredictFailureRisk", mock.Anything, "PUMP_BLD_001_01", defaultRiskHorizonHours).
		Return(assessmentFor("PUMP_BLD_001_01", 0.9, model.RiskCritical), nil)
	mRisk.On("PredictFailureRisk", mock.Anything, "PUMP_BLD_001_02", defaultRiskHorizonHours).
		Return(assessmentFor("PUMP_BLD_001_02", 0.1, model.RiskLow), nil)
	mRisk.On("PredictFailureRisk", mock.Anything, "PUMP_BLD_002_01", defaultRiskHorizonHours).
		Return(assessmentFor("PUMP_BLD_002_01", 0.6, model.RiskHigh), nil)
	mRisk.On("PredictFailureRisk", mock.Anything, "PUMP_BLD_002_02", defaultRiskHorizonHours).
		Return(nil, ErrInsufficientData)

	mForecast := new(forecastServiceMock)
	mForecast.On("ForecastDemand", mock.Anything, "BLD_001", defaultHorizonHours).
		Return(&model.Forecast{
			AssetID:        "BLD_001",
			HorizonHours:   defaultHorizonHours,
			ForecastTotal:  4200,
			DemandLevel:    model.DemandCritical,
			Recommendation: "Immediate action required",
		}, nil)
	mForecast.On("ForecastDemand", mock.Anything, "BLD_002", defaultHorizonHours).
		Return(&model.Forecast{
			AssetID:       "BLD_002",
			HorizonHours:  defaultHorizonHours,
			ForecastTotal: 1800,
			DemandLevel:   model.DemandNormal,
		}, nil)

	criticalTask := &model.Task{TaskID: "TASK_CRIT0001", Title: "CRITICAL: Inspect PUMP_BLD_001_01", Priority: model.PriorityCritical, SLAHours: 4, BuildingID: "BLD_001"}
	highTask := &model.Task{TaskID: "TASK_HIGH0001", Title: "HIGH: Inspect PUMP_BLD_002_01", Priority: model.PriorityHigh, SLAHours: 24, BuildingID: "BLD_002"}
	capacityTask := &model.Task{TaskID: "TASK_CAPA0001", Title: "CRITICAL: Capacity Alert - BLD_001", Priority: model.PriorityCritical, SLAHours: 2, BuildingID: "BLD_001"}

	mTasks := new(taskServiceMock)
	mTasks.On("CreateWorkOrder", mock.Anything, mock.MatchedBy(func(in CreateWorkOrderInput) bool {
		return in.AssetID == "PUMP_BLD_001_01"
	})).Return(criticalTask, true, nil)
	// The HIGH pump already has an open work order.
	mTasks.On("CreateWorkOrder", mock.Anything, mock.MatchedBy(func(in CreateWorkOrderInput) bool {
		return in.AssetID == "PUMP_BLD_002_01"
	})).Return(highTask, false, nil)
	mTasks.On("CreateWorkOrder", mock.Anything, mock.MatchedBy(func(in CreateWorkOrderInput) bool {
		return in.AssetID == "BLD_001"
	})).Return(capacityTask, true, nil)

	mRouting := new(routingServiceMock)
	mRouting.On("Assign", criticalTask, "urgent_inspection").
		Return(model.Assignment{TaskID: criticalTask.TaskID, TechnicianID: "TECH_001", TechnicianName: "Technician A", Status: "assigned"})
	mRouting.On("Assign", capacityTask, "capacity_alert").
		Return(model.Assignment{TaskID: capacityTask.TaskID, TechnicianID: "TECH_002", TechnicianName: "Technician B", Status: "assigned"})

	mNotify := new(notificationServiceMock)
	mNotify.On("NotifyTaskAssigned", mock.Anything, criticalTask, "Technician A").
		Return(&model.Notification{}, nil)
	mNotify.On("NotifyTaskAssigned", mock.Anything, capacityTask, "Technician B").
		Return(&model.Notification{}, nil)

	mAlerts := new(repoMocks.MockAlertRepository)
	mAlerts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Alert) bool {
		return a.AssetID == "PUMP_BLD_001_01" &&
			a.SiteID == "SITE_001" &&
			a.Severity == model.SeverityCritical &&
			a.AlertType == "failure_risk"
	})).Return(&model.Alert{}, nil)

	svc := &supervisorService{
		loader:   testLoader(t),
		risk:     mRisk,
		forecast: mForecast,
		tasks:    mTasks,
		routing:  mRouting,
		notify:   mNotify,
		alerts:   mAlerts,
		workers:  2,
		now:      func() time.Time { return supervisorNow },
	}

	report, err := svc.RunSite(ctx, "SITE_001")
	require.NoError(t, err)

	assert.Equal(t, "SITE_001", report.SiteID)
	assert.Equal(t, "Test Site", report.SiteName)
	assert.Equal(t, supervisorNow, report.Timestamp)
	assert.Equal(t, 4, report.PumpsAnalyzed)

	assert.Equal(t, 1, report.CriticalCount)
	assert.Equal(t, 1, report.HighCount)
	assert.Equal(t, 0, report.MediumCount)
	assert.Equal(t, 1, report.LowCount)

	// The deduplicated HIGH task is referenced in details but not
	// re-created or re-assigned.
	require.Len(t, report.TasksCreated, 2)
	require.Len(t, report.Assignments, 2)

	require.Len(t, report.Details, 4)
	byAsset := make(map[string]model.AssetDetail)
	for _, d := range report.Details {
		byAsset[d.AssetID] = d
	}
	assert.Equal(t, "TASK_CRIT0001", byAsset["PUMP_BLD_001_01"].TaskID)
	assert.Equal(t, "urgent_inspection", byAsset["PUMP_BLD_001_01"].ActionType)
	assert.NotEmpty(t, byAsset["PUMP_BLD_001_01"].Reasoning)
	assert.Equal(t, "TASK_HIGH0001", byAsset["PUMP_BLD_002_01"].TaskID)
	assert.Empty(t, byAsset["PUMP_BLD_001_02"].TaskID)
	assert.Equal(t, ErrInsufficientData.Error(), byAsset["PUMP_BLD_002_02"].Error)

	require.Len(t, report.Forecasts, 2)
	byBuilding := make(map[string]model.BuildingForecastSummary)
	for _, f := range report.Forecasts {
		byBuilding[f.BuildingID] = f
	}
	assert.Equal(t, "TASK_CAPA0001", byBuilding["BLD_001"].TaskID)
	assert.Equal(t, model.DemandCritical, byBuilding["BLD_001"].DemandLevel)
	assert.Empty(t, byBuilding["BLD_002"].TaskID)

	mAlerts.AssertExpectations(t)
	mRouting.AssertExpectations(t)
	mNotify.AssertExpectations(t)
}

func TestSupervisorService_RunSite_UnknownSite(t *testing.T) {
	svc := &supervisorService{
		loader:  testLoader(t),
		workers: 2,
		now:     func() time.Time { return supervisorNow },
	}

	_, err := svc.RunSite(context.Background(), "SITE_999")
	assert.ErrorIs(t, err, ErrUnknownSite)

	_, err = svc.RunSite(context.Background(), "")
	assert.ErrorIs(t, err, ErrIDRequired)
}
