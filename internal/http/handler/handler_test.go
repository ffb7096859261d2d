package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homenet/internal/model"
	"homenet/internal/service"
	serviceMocks "homenet/internal/service/mocks"
)

// envelope mirrors model.Envelope with a raw data payload for decoding.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, svcs Services) *fiber.App {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, svcs)
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestHealthz(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", Healthz())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateTask(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("CreateWorkOrder", mock.Anything, mock.MatchedBy(func(in service.CreateWorkOrderInput) bool {
			return in.Title == "Inspect pump" && in.AssetID == "PUMP_BLD_001_01"
		})).Return(&model.Task{TaskID: "TASK_AB12CD34", Status: model.TaskStatusOpen}, true, nil)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/tasks", map[string]any{
			"title":    "Inspect pump",
			"asset_id": "PUMP_BLD_001_01",
			"priority": "CRITICAL",
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body envelope
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "ok", body.Status)

		var task model.Task
		require.NoError(t, json.Unmarshal(body.Data, &task))
		assert.Equal(t, "TASK_AB12CD34", task.TaskID)
	})

	t.Run("duplicate returns 200", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("CreateWorkOrder", mock.Anything, mock.Anything).
			Return(&model.Task{TaskID: "TASK_EXISTING"}, false, nil)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/tasks", map[string]any{
			"title": "Inspect pump",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("CreateWorkOrder", mock.Anything, mock.Anything).
			Return(nil, false, service.ErrTitleRequired)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/tasks", map[string]any{}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "TITLE_REQUIRED", body.Error.Code)
	})

	t.Run("bad priority", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("CreateWorkOrder", mock.Anything, mock.Anything).
			Return(nil, false, service.ErrInvalidPriority)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/tasks", map[string]any{
			"title":    "Inspect pump",
			"priority": "URGENT",
		}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("Get", mock.Anything, "TASK_AB12CD34").
			Return(&model.Task{TaskID: "TASK_AB12CD34"}, nil)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/TASK_AB12CD34", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid id format", func(t *testing.T) {
		app := newTestApp(t, Services{Tasks: new(serviceMocks.MockTaskService)})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/not-a-task", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_ID", body.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("Get", mock.Anything, "TASK_MISSING1").
			Return(nil, service.ErrNotFound)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/TASK_MISSING1", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("transition applied", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("UpdateStatus", mock.Anything, "TASK_AB12CD34", model.TaskStatusInProgress, "starting").
			Return(&model.Task{TaskID: "TASK_AB12CD34", Status: model.TaskStatusInProgress}, nil)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tasks/TASK_AB12CD34", map[string]any{
			"status": "IN_PROGRESS",
			"notes":  "starting",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid transition", func(t *testing.T) {
		mTasks := new(serviceMocks.MockTaskService)
		mTasks.On("UpdateStatus", mock.Anything, "TASK_AB12CD34", model.TaskStatusDone, "").
			Return(nil, service.ErrInvalidTransition)

		app := newTestApp(t, Services{Tasks: mTasks})
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tasks/TASK_AB12CD34", map[string]any{
			"status": "DONE",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_TRANSITION", body.Error.Code)
	})
}

func TestListTasks(t *testing.T) {
	mTasks := new(serviceMocks.MockTaskService)
	mTasks.On("List", mock.Anything, "BLD_001", "OPEN", 5).
		Return([]model.Task{{TaskID: "TASK_AB12CD34"}}, nil)

	app := newTestApp(t, Services{Tasks: mTasks})
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tasks?building_id=BLD_001&status=OPEN&limit=5", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body envelope
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "ok", body.Status)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal(body.Data, &tasks))
	assert.Len(t, tasks, 1)
}

func TestListReadings(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mReadings := new(serviceMocks.MockReadingService)
		mReadings.On("ListRecent", mock.Anything, "PUMP_BLD_001_01", 100).
			Return([]model.SensorReading{{ID: "r1"}}, nil)

		app := newTestApp(t, Services{Readings: mReadings})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/readings?asset_id=PUMP_BLD_001_01", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing asset id", func(t *testing.T) {
		mReadings := new(serviceMocks.MockReadingService)
		mReadings.On("ListRecent", mock.Anything, "", 100).
			Return(nil, service.ErrIDRequired)

		app := newTestApp(t, Services{Readings: mReadings})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/readings", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSimulateReadings(t *testing.T) {
	mReadings := new(serviceMocks.MockReadingService)
	mReadings.On("Simulate", mock.Anything, "SITE_001", "PUMP_BLD_001_01", 50).
		Return([]model.SensorReading{{ID: "r1"}}, nil)

	app := newTestApp(t, Services{Readings: mReadings})
	resp, _ := app.Test(jsonRequest(http.MethodPost, "/simulate/readings", map[string]any{
		"site_id":  "SITE_001",
		"asset_id": "PUMP_BLD_001_01",
		"rows":     50,
	}))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSnapshotSite(t *testing.T) {
	t.Run("archived", func(t *testing.T) {
		mReadings := new(serviceMocks.MockReadingService)
		mReadings.On("SnapshotSite", mock.Anything, []string{"BLD_001"}, 14).
			Return("snapshots/2025-10-15T09-00-00Z", nil)

		app := newTestApp(t, Services{Readings: mReadings})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/simulate/snapshot", map[string]any{
			"buildings": []string{"BLD_001"},
			"days":      14,
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("storage not configured", func(t *testing.T) {
		mReadings := new(serviceMocks.MockReadingService)
		mReadings.On("SnapshotSite", mock.Anything, mock.Anything, mock.Anything).
			Return("", service.ErrSnapshotUnavailable)

		app := newTestApp(t, Services{Readings: mReadings})
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/simulate/snapshot", map[string]any{
			"buildings": []string{"BLD_001"},
		}))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestGetForecast(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mForecast := new(serviceMocks.MockForecastService)
		mForecast.On("ForecastDemand", mock.Anything, "BLD_001", 24).
			Return(&model.Forecast{AssetID: "BLD_001", DemandLevel: model.DemandNormal}, nil)

		app := newTestApp(t, Services{Forecast: mForecast})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/forecast/BLD_001?horizon_hours=24", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("insufficient history", func(t *testing.T) {
		mForecast := new(serviceMocks.MockForecastService)
		mForecast.On("ForecastDemand", mock.Anything, "BLD_EMPTY", 0).
			Return(nil, service.ErrInsufficientData)

		app := newTestApp(t, Services{Forecast: mForecast})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/forecast/BLD_EMPTY", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INSUFFICIENT_DATA", body.Error.Code)
	})
}

func TestGetRisk(t *testing.T) {
	mRisk := new(serviceMocks.MockRiskService)
	mRisk.On("PredictFailureRisk", mock.Anything, "PUMP_BLD_001_01", 48).
		Return(&model.RiskAssessment{AssetID: "PUMP_BLD_001_01", RiskLevel: model.RiskHigh}, nil)

	app := newTestApp(t, Services{Risk: mRisk})
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/risk/PUMP_BLD_001_01?horizon_hours=48", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body envelope
	json.NewDecoder(resp.Body).Decode(&body)

	var assessment model.RiskAssessment
	require.NoError(t, json.Unmarshal(body.Data, &assessment))
	assert.Equal(t, model.RiskHigh, assessment.RiskLevel)
}

func TestRunSupervisor(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mSupervisor := new(serviceMocks.MockSupervisorService)
		mSupervisor.On("RunSite", mock.Anything, "SITE_001").
			Return(&model.SiteReport{SiteID: "SITE_001", PumpsAnalyzed: 4}, nil)

		app := newTestApp(t, Services{Supervisor: mSupervisor})
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/supervisor/run/SITE_001", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown site", func(t *testing.T) {
		mSupervisor := new(serviceMocks.MockSupervisorService)
		mSupervisor.On("RunSite", mock.Anything, "SITE_999").
			Return(nil, service.ErrUnknownSite)

		app := newTestApp(t, Services{Supervisor: mSupervisor})
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/supervisor/run/SITE_999", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListNotifications(t *testing.T) {
	mNotify := new(serviceMocks.MockNotificationService)
	mNotify.On("List", mock.Anything, "BLD_001", true, 10).
		Return([]model.Notification{{ID: "n1"}}, nil)

	app := newTestApp(t, Services{Notifications: mNotify})
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/notifications?building_id=BLD_001&unread_only=true", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMarkNotificationRead(t *testing.T) {
	t.Run("marked", func(t *testing.T) {
		mNotify := new(serviceMocks.MockNotificationService)
		mNotify.On("MarkRead", mock.Anything, "n1").Return(nil)

		app := newTestApp(t, Services{Notifications: mNotify})
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing notification", func(t *testing.T) {
		mNotify := new(serviceMocks.MockNotificationService)
		mNotify.On("MarkRead", mock.Anything, "missing").Return(service.ErrNotFound)

		app := newTestApp(t, Services{Notifications: mNotify})
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/notifications/missing/read", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
