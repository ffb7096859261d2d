package service

import (
	"context"
	"time"

	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/repository"
	"homenet/internal/simulator"
	"homenet/internal/storage"
)

// ReadingService stores and serves sensor readings, and drives the
// simulator for demo data.
type ReadingService interface {
	// Ingest stores a batch of readings. source labels the origin
	// (mqtt, simulator, api) for metrics.
	Ingest(ctx context.Context, readings []model.SensorReading, source string) error

	// ListRecent returns the newest readings for an asset.
	ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error)

	// Simulate generates nRows synthetic readings for an asset, stores
	// them, and returns the stored batch.
	Simulate(ctx context.Context, siteID, assetID string, nRows int) ([]model.SensorReading, error)

	// SnapshotSite generates a full site dataset and archives it as CSV
	// objects. Returns the snapshot key prefix.
	SnapshotSite(ctx context.Context, buildings []string, days int) (string, error)
}

type readingService struct {
	repo  repository.ReadingRepository
	gen   *simulator.Generator
	store storage.Storage
	now   func() time.Time
}

// NewReadingService constructs a ReadingService. store may be nil; the
// snapshot operation is then unavailable.
func NewReadingService(repo repository.ReadingRepository, gen *simulator.Generator, store storage.Storage) ReadingService {
	return &readingService{
		repo:  repo,
		gen:   gen,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *readingService) Ingest(ctx context.Context, readings []model.SensorReading, source string) error {
	if len(readings) == 0 {
		return nil
	}
	if err := s.repo.InsertBatch(ctx, readings); err != nil {
		return err
	}
	metrics.ReadingsIngested.WithLabelValues(source).Add(float64(len(readings)))
	return nil
}

func (s *readingService) ListRecent(ctx context.Context, assetID string, limit int) ([]model.SensorReading, error) {
	if assetID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListRecent(ctx, assetID, limit)
}

func (s *readingService) Simulate(ctx context.Context, siteID, assetID string, nRows int) ([]model.SensorReading, error) {
	if assetID == "" {
		return nil, ErrIDRequired
	}
	readings := s.gen.GenerateReadings(siteID, assetID, nRows)
	if err := s.Ingest(ctx, readings, "simulator"); err != nil {
		return nil, err
	}
	return readings, nil
}

func (s *readingService) SnapshotSite(ctx context.Context, buildings []string, days int) (string, error) {
	if s.store == nil {
		return "", ErrSnapshotUnavailable
	}
	if days <= 0 {
		days = 14
	}
	now := s.now()
	start := now.AddDate(0, 0, -days)
	ds := s.gen.GenerateSite(buildings, start, days)

	prefix := now.Format("2006-01-02T15-04-05Z")
	if err := simulator.WriteSnapshot(ctx, s.store, prefix, ds); err != nil {
		return "", err
	}
	return "snapshots/" + prefix, nil
}
