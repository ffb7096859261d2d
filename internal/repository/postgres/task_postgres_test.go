package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"homenet/internal/model"
	"homenet/internal/repository"
)

var taskColumnList = []string{
	"task_id", "title", "description", "asset_type", "asset_id", "building_id",
	"priority", "sla_hours", "status", "assignee_id", "created_at", "updated_at", "notes",
}

func taskRow(t *model.Task) *sqlmock.Rows {
	return sqlmock.NewRows(taskColumnList).AddRow(
		t.TaskID, t.Title, t.Description, t.AssetType, t.AssetID, t.BuildingID,
		t.Priority, t.SLAHours, t.Status, t.AssigneeID, t.CreatedAt, t.UpdatedAt, t.Notes,
	)
}

func sampleTask(now time.Time) *model.Task {
	return &model.Task{
		TaskID:      "TASK_AB12CD34",
		Title:       "Pump inspection: PUMP_BLD_001_01",
		Description: "High vibration detected",
		AssetType:   model.AssetTypePump,
		AssetID:     "PUMP_BLD_001_01",
		BuildingID:  "BLD_001",
		Priority:    model.PriorityHigh,
		SLAHours:    24,
		Status:      model.TaskStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestTaskPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTaskPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	task := sampleTask(now)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs(task.TaskID, task.Title, task.Description, task.AssetType, task.AssetID,
			task.BuildingID, task.Priority, task.SLAHours, task.Status, task.AssigneeID,
			task.CreatedAt, task.UpdatedAt, task.Notes).
		WillReturnRows(taskRow(task))

	result, err := repo.Create(ctx, task)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, task.TaskID, result.TaskID)
	assert.Equal(t, model.TaskStatusOpen, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTaskPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tasks WHERE task_id = ?").
			WithArgs("TASK_AB12CD34").
			WillReturnRows(taskRow(sampleTask(time.Now().UTC())))

		task, err := repo.FindByID(ctx, "TASK_AB12CD34")

		assert.NoError(t, err)
		assert.NotNil(t, task)
		assert.Equal(t, "TASK_AB12CD34", task.TaskID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tasks WHERE task_id = ?").
			WithArgs("TASK_MISSING0").
			WillReturnError(sql.ErrNoRows)

		task, err := repo.FindByID(ctx, "TASK_MISSING0")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, task)
	})
}

func TestTaskPostgres_FindOpenDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTaskPostgres(db)
	ctx := context.Background()

	t.Run("duplicate exists", func(t *testing.T) {
		existing := sampleTask(time.Now().UTC())
		mock.ExpectQuery("SELECT (.+) FROM tasks").
			WithArgs(existing.Title, existing.AssetID, existing.BuildingID).
			WillReturnRows(taskRow(existing))

		task, err := repo.FindOpenDuplicate(ctx, existing.Title, existing.AssetID, existing.BuildingID)

		assert.NoError(t, err)
		assert.NotNil(t, task)
		assert.Equal(t, existing.TaskID, task.TaskID)
	})

	t.Run("no duplicate", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tasks").
			WithArgs("some title", "PUMP_BLD_002_01", "BLD_002").
			WillReturnError(sql.ErrNoRows)

		task, err := repo.FindOpenDuplicate(ctx, "some title", "PUMP_BLD_002_01", "BLD_002")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, task)
	})
}

func TestTaskPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTaskPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs("BLD_001", model.TaskStatusOpen, 10).
		WillReturnRows(taskRow(sampleTask(time.Now().UTC())))

	items, err := repo.List(ctx, repository.TaskFilter{
		BuildingID: "BLD_001",
		Status:     model.TaskStatusOpen,
		Limit:      10,
	})

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "BLD_001", items[0].BuildingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTaskPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	updated := sampleTask(now)
	updated.Status = model.TaskStatusInProgress
	updated.Notes = "technician dispatched"

	mock.ExpectQuery("UPDATE tasks").
		WithArgs(updated.TaskID, model.TaskStatusInProgress, "technician dispatched", now).
		WillReturnRows(taskRow(updated))

	task, err := repo.UpdateStatus(ctx, updated.TaskID, model.TaskStatusInProgress, "technician dispatched", now)

	assert.NoError(t, err)
	assert.NotNil(t, task)
	assert.Equal(t, model.TaskStatusInProgress, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
