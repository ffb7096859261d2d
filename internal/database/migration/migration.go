package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_tasks",
		SQL: `CREATE TABLE IF NOT EXISTS tasks (
  task_id     TEXT        PRIMARY KEY,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL,
  asset_type  TEXT        NOT NULL,
  asset_id    TEXT        NOT NULL,
  building_id TEXT        NOT NULL,
  priority    TEXT        NOT NULL,
  sla_hours   INTEGER     NOT NULL CHECK (sla_hours >= 0),
  status      TEXT        NOT NULL,
  assignee_id TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  notes       TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_tasks_building_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tasks_building_status ON tasks (building_id, status);`,
	},
	{
		Name: "create_index_tasks_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at);`,
	},
	{
		Name: "create_table_sensor_readings",
		SQL: `CREATE TABLE IF NOT EXISTS sensor_readings (
  id          UUID        PRIMARY KEY,
  site_id     TEXT        NOT NULL,
  building_id TEXT        NOT NULL,
  asset_id    TEXT        NOT NULL,
  asset_type  TEXT        NOT NULL,
  sensor_type TEXT        NOT NULL,
  value       DOUBLE PRECISION NOT NULL,
  unit        TEXT        NOT NULL DEFAULT '',
  recorded_at TIMESTAMPTZ NOT NULL,
  received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_readings_asset_recorded",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_readings_asset_recorded ON sensor_readings (asset_id, recorded_at);`,
	},
	{
		Name: "create_index_readings_building_sensor",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_readings_building_sensor ON sensor_readings (building_id, sensor_type, recorded_at);`,
	},
	{
		Name: "create_table_alerts",
		SQL: `CREATE TABLE IF NOT EXISTS alerts (
  alert_id    TEXT        PRIMARY KEY,
  site_id     TEXT        NOT NULL,
  building_id TEXT        NOT NULL,
  asset_id    TEXT        NOT NULL,
  asset_type  TEXT        NOT NULL,
  alert_type  TEXT        NOT NULL,
  severity    TEXT        NOT NULL,
  description TEXT        NOT NULL,
  value       DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_alerts_asset_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_alerts_asset_created ON alerts (asset_id, created_at);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id              UUID        PRIMARY KEY,
  type            TEXT        NOT NULL,
  title           TEXT        NOT NULL,
  message         TEXT        NOT NULL,
  severity        TEXT        NOT NULL,
  building_id     TEXT        NOT NULL DEFAULT '',
  related_task_id TEXT        NOT NULL DEFAULT '',
  read            BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_notifications_building_read",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_building_read ON notifications (building_id, read);`,
	},
}

// EnsureMigrated checks if the 'tasks' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.tasks') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
