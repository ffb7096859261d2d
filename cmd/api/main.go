package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"homenet/internal/config"
	"homenet/internal/database"
	"homenet/internal/database/migration"
	handlers "homenet/internal/http/handler"
	"homenet/internal/http/middleware"
	"homenet/internal/mqtt"
	"homenet/internal/otel"
	"homenet/internal/policy"
	"homenet/internal/repository/postgres"
	"homenet/internal/service"
	"homenet/internal/simulator"
	"homenet/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Object storage is optional: without it snapshots and report
	// archives are disabled but the API still serves.
	var objStore storage.Storage
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	} else {
		log.Println("object storage not configured, snapshots disabled")
	}

	// Decision policy with hot reload on file change
	loader, err := policy.NewLoader(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("failed to load policy %s: %v", cfg.PolicyPath, err)
	}
	stopWatch, err := loader.Watch()
	if err != nil {
		log.Fatalf("failed to watch policy file: %v", err)
	}
	defer stopWatch()

	// Initialize repositories and services
	taskRepo := postgres.NewTaskPostgres(db)
	readingRepo := postgres.NewReadingPostgres(db)
	alertRepo := postgres.NewAlertPostgres(db)
	notificationRepo := postgres.NewNotificationPostgres(db)

	gen := simulator.New(cfg.Simulator.Seed)
	notificationSvc := service.NewNotificationService(notificationRepo)
	taskSvc := service.NewTaskService(taskRepo, notificationSvc)
	readingSvc := service.NewReadingService(readingRepo, gen, objStore)
	forecastSvc := service.NewForecastService(readingRepo)
	riskSvc := service.NewRiskService(readingRepo)
	routingSvc := service.NewRoutingService(loader)
	supervisorSvc := service.NewSupervisorService(
		loader, riskSvc, forecastSvc, taskSvc, routingSvc, notificationSvc, alertRepo, objStore)

	// MQTT ingestion is optional: no broker just means readings arrive
	// over HTTP or from the simulator.
	if cfg.MQTT.BrokerURL != "" {
		consumer := mqtt.NewConsumer(cfg.MQTT, readingSvc, taskSvc, alertRepo)
		if err := consumer.Start(ctx); err != nil {
			log.Printf("warning: %v, continuing without live ingestion", err)
		} else {
			defer consumer.Stop()
		}
	} else {
		log.Println("mqtt broker not configured, live ingestion disabled")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Tasks:         taskSvc,
		Readings:      readingSvc,
		Forecast:      forecastSvc,
		Risk:          riskSvc,
		Supervisor:    supervisorSvc,
		Notifications: notificationSvc,
	})

	addr := ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
