package handler

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"homenet/internal/model"
	"homenet/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Tasks         service.TaskService
	Readings      service.ReadingService
	Forecast      service.ForecastService
	Risk          service.RiskService
	Supervisor    service.SupervisorService
	Notifications service.NotificationService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/openapi.yaml", OpenAPISpec())
	app.Get("/docs", Docs())

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Healthz())

	app.Get("/tasks", ListTasks(svcs.Tasks))
	app.Post("/tasks", CreateTask(svcs.Tasks))
	app.Get("/tasks/:id", GetTask(svcs.Tasks))
	app.Patch("/tasks/:id", UpdateTask(svcs.Tasks))

	app.Get("/readings", ListReadings(svcs.Readings))
	app.Post("/simulate/readings", SimulateReadings(svcs.Readings))
	app.Post("/simulate/snapshot", SnapshotSite(svcs.Readings))

	app.Get("/forecast/:asset_id", GetForecast(svcs.Forecast))
	app.Get("/risk/:asset_id", GetRisk(svcs.Risk))
	app.Post("/supervisor/run/:site_id", RunSupervisor(svcs.Supervisor))

	app.Get("/notifications", ListNotifications(svcs.Notifications))
	app.Post("/notifications/:id/read", MarkNotificationRead(svcs.Notifications))
}

// OpenAPISpec serves the static OpenAPI document.
func OpenAPISpec() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	}
}

// Docs serves a minimal Swagger UI page pointed at /openapi.yaml.
func Docs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	}
}

// HealthCheck reports database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Healthz is a bare liveness probe.
func Healthz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListTasks lists work orders with optional building_id, status, and
// limit filters.
func ListTasks(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		tasks, err := svc.List(c.UserContext(), c.Query("building_id"), c.Query("status"), limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(tasks))
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssetType   string `json:"asset_type"`
	AssetID     string `json:"asset_id"`
	BuildingID  string `json:"building_id"`
	Priority    string `json:"priority"`
	SLAHours    int    `json:"sla_hours"`
	AssigneeID  string `json:"assignee_id"`
}

// CreateTask opens a work order. Returns 201 for a new task and 200
// when an open duplicate already covers it.
func CreateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		task, created, err := svc.CreateWorkOrder(c.UserContext(), service.CreateWorkOrderInput{
			Title:       req.Title,
			Description: req.Description,
			AssetType:   req.AssetType,
			AssetID:     req.AssetID,
			BuildingID:  req.BuildingID,
			Priority:    req.Priority,
			SLAHours:    req.SLAHours,
			AssigneeID:  req.AssigneeID,
		})
		if err != nil {
			return serviceError(c, err)
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(model.OK(task))
	}
}

// GetTask returns a single work order by its TASK_ id.
func GetTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !strings.HasPrefix(id, "TASK_") {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		task, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(task))
	}
}

type updateTaskRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateTask moves a work order through its lifecycle.
func UpdateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !strings.HasPrefix(id, "TASK_") {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		task, err := svc.UpdateStatus(c.UserContext(), id, req.Status, req.Notes)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(task))
	}
}

// ListReadings returns the newest readings for an asset.
func ListReadings(svc service.ReadingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "100"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		readings, err := svc.ListRecent(c.UserContext(), c.Query("asset_id"), limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(readings))
	}
}

type simulateRequest struct {
	SiteID  string `json:"site_id"`
	AssetID string `json:"asset_id"`
	Rows    int    `json:"rows"`
}

// SimulateReadings generates and stores synthetic readings for an asset.
func SimulateReadings(svc service.ReadingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req simulateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		readings, err := svc.Simulate(c.UserContext(), req.SiteID, req.AssetID, req.Rows)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(model.OK(readings))
	}
}

type snapshotRequest struct {
	Buildings []string `json:"buildings"`
	Days      int      `json:"days"`
}

// SnapshotSite generates a full site dataset and archives it to object
// storage as CSV.
func SnapshotSite(svc service.ReadingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req snapshotRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		prefix, err := svc.SnapshotSite(c.UserContext(), req.Buildings, req.Days)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(model.OK(fiber.Map{"key_prefix": prefix}))
	}
}

// GetForecast returns a demand forecast for an asset or building.
func GetForecast(svc service.ForecastService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hours, err := strconv.Atoi(c.Query("horizon_hours", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_HOURS", "invalid horizon_hours")
		}

		fc, err := svc.ForecastDemand(c.UserContext(), c.Params("asset_id"), hours)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(fc))
	}
}

// GetRisk returns the failure risk assessment for an asset.
func GetRisk(svc service.RiskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hours, err := strconv.Atoi(c.Query("horizon_hours", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_HOURS", "invalid horizon_hours")
		}

		assessment, err := svc.PredictFailureRisk(c.UserContext(), c.Params("asset_id"), hours)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(assessment))
	}
}

// RunSupervisor runs a full site health check and returns the report.
func RunSupervisor(svc service.SupervisorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := svc.RunSite(c.UserContext(), c.Params("site_id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(report))
	}
}

// ListNotifications lists notifications with optional building_id,
// unread_only, and limit filters.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		unreadOnly, err := strconv.ParseBool(c.Query("unread_only", "false"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", "invalid unread_only")
		}

		items, err := svc.List(c.UserContext(), c.Query("building_id"), unreadOnly, limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(items))
	}
}

// MarkNotificationRead marks a single notification as read.
func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkRead(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(model.OK(fiber.Map{"read": true}))
	}
}
