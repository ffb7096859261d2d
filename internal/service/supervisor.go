package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/policy"
	"homenet/internal/repository"
	"homenet/internal/storage"
)

const defaultSupervisorWorkers = 4

// SupervisorService orchestrates a full site health run: it scores every
// pump, forecasts demand per building, opens the work orders the policy
// calls for, and routes them to technicians.
type SupervisorService interface {
	RunSite(ctx context.Context, siteID string) (*model.SiteReport, error)
}

type supervisorService struct {
	loader   *policy.Loader
	risk     RiskService
	forecast ForecastService
	tasks    TaskService
	routing  RoutingService
	notify   NotificationService
	alerts   repository.AlertRepository
	store    storage.Storage
	workers  int
	now      func() time.Time
}

// NewSupervisorService constructs a SupervisorService. store may be nil;
// report archiving is then skipped.
func NewSupervisorService(
	loader *policy.Loader,
	risk RiskService,
	forecast ForecastService,
	tasks TaskService,
	routing RoutingService,
	notify NotificationService,
	alerts repository.AlertRepository,
	store storage.Storage,
) SupervisorService {
	return &supervisorService{
		loader:   loader,
		risk:     risk,
		forecast: forecast,
		tasks:    tasks,
		routing:  routing,
		notify:   notify,
		alerts:   alerts,
		store:    store,
		workers:  defaultSupervisorWorkers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type pumpJob struct {
	siteID     string
	pumpID     string
	buildingID string
}

type pumpOutcome struct {
	detail     model.AssetDetail
	task       *model.Task
	assignment *model.Assignment
}

func (s *supervisorService) RunSite(ctx context.Context, siteID string) (*model.SiteReport, error) {
	if siteID == "" {
		return nil, ErrIDRequired
	}
	started := s.now()
	pol := s.loader.Policy()
	site, ok := pol.Site(siteID)
	if !ok {
		metrics.SupervisorRuns.WithLabelValues(siteID, "unknown_site").Inc()
		return nil, ErrUnknownSite
	}

	var jobs []pumpJob
	for _, b := range site.Buildings {
		for _, pumpID := range b.Pumps {
			jobs = append(jobs, pumpJob{siteID: siteID, pumpID: pumpID, buildingID: b.ID})
		}
	}

	report := &model.SiteReport{
		SiteID:        siteID,
		SiteName:      site.Name,
		Timestamp:     started,
		PumpsAnalyzed: len(jobs),
	}

	outcomes := runPool(ctx, s.workers, jobs, func(ctx context.Context, j pumpJob) (pumpOutcome, error) {
		return s.analyzePump(ctx, pol, j)
	})
	for _, res := range outcomes {
		if res.err != nil {
			report.Details = append(report.Details, model.AssetDetail{Error: res.err.Error()})
			continue
		}
		out := res.value
		report.Details = append(report.Details, out.detail)
		switch out.detail.RiskLevel {
		case model.RiskCritical:
			report.CriticalCount++
		case model.RiskHigh:
			report.HighCount++
		case model.RiskMedium:
			report.MediumCount++
		case model.RiskLow:
			report.LowCount++
		}
		if out.task != nil {
			report.TasksCreated = append(report.TasksCreated, *out.task)
		}
		if out.assignment != nil {
			report.Assignments = append(report.Assignments, *out.assignment)
		}
	}

	for _, b := range site.Buildings {
		summary := s.analyzeBuildingDemand(ctx, pol, b.ID, report)
		report.Forecasts = append(report.Forecasts, summary)
	}

	s.archiveReport(ctx, report)

	metrics.SupervisorRuns.WithLabelValues(siteID, "ok").Inc()
	metrics.SupervisorRunDuration.Observe(float64(s.now().Sub(started).Milliseconds()))
	return report, nil
}

func (s *supervisorService) analyzePump(ctx context.Context, pol *policy.Policy, j pumpJob) (pumpOutcome, error) {
	detail := model.AssetDetail{AssetID: j.pumpID}

	assessment, err := s.risk.PredictFailureRisk(ctx, j.pumpID, defaultRiskHorizonHours)
	if err != nil {
		detail.Error = err.Error()
		return pumpOutcome{detail: detail}, nil
	}
	detail.RiskScore = assessment.RiskScore
	detail.RiskLevel = assessment.RiskLevel

	decision, needsAction := pol.RiskDecision(assessment.RiskLevel)
	if !needsAction {
		return pumpOutcome{detail: detail}, nil
	}
	detail.Priority = decision.Priority
	detail.ActionType = decision.ActionType
	detail.Reasoning = strings.Join(topSignals(assessment.Signals, 2), "; ")

	if assessment.RiskLevel == model.RiskCritical {
		s.persistAlert(ctx, j, assessment)
	}

	task, created, err := s.tasks.CreateWorkOrder(ctx, CreateWorkOrderInput{
		Title:       fmt.Sprintf("%s: Inspect %s", decision.Priority, j.pumpID),
		Description: fmt.Sprintf("Risk: %.1f%%. %s", assessment.RiskScore*100, detail.Reasoning),
		AssetType:   model.AssetTypePump,
		AssetID:     j.pumpID,
		BuildingID:  j.buildingID,
		Priority:    decision.Priority,
		SLAHours:    decision.SLAHours,
	})
	if err != nil {
		detail.Error = err.Error()
		return pumpOutcome{detail: detail}, nil
	}
	detail.TaskID = task.TaskID

	out := pumpOutcome{detail: detail}
	if created {
		out.task = task
		assignment := s.routing.Assign(task, decision.ActionType)
		out.assignment = &assignment
		if assignment.TechnicianID != "" {
			s.notify.NotifyTaskAssigned(ctx, task, assignment.TechnicianName)
		}
	}
	return out, nil
}

func (s *supervisorService) analyzeBuildingDemand(ctx context.Context, pol *policy.Policy, buildingID string, report *model.SiteReport) model.BuildingForecastSummary {
	summary := model.BuildingForecastSummary{BuildingID: buildingID}

	fc, err := s.forecast.ForecastDemand(ctx, buildingID, defaultHorizonHours)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	summary.DemandLevel = fc.DemandLevel
	summary.ForecastTotal = fc.ForecastTotal

	decision, needsAction := pol.DemandDecision(fc.DemandLevel)
	if !needsAction {
		return summary
	}

	task, created, err := s.tasks.CreateWorkOrder(ctx, CreateWorkOrderInput{
		Title:       fmt.Sprintf("%s: Capacity Alert - %s", decision.Priority, buildingID),
		Description: fmt.Sprintf("Demand level %s, forecast total %.0f liters over %dh. %s", fc.DemandLevel, fc.ForecastTotal, fc.HorizonHours, fc.Recommendation),
		AssetType:   model.AssetTypeTank,
		AssetID:     buildingID,
		BuildingID:  buildingID,
		Priority:    decision.Priority,
		SLAHours:    decision.SLAHours,
	})
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	summary.TaskID = task.TaskID
	if created {
		report.TasksCreated = append(report.TasksCreated, *task)
		assignment := s.routing.Assign(task, decision.ActionType)
		report.Assignments = append(report.Assignments, assignment)
		if assignment.TechnicianID != "" {
			s.notify.NotifyTaskAssigned(ctx, task, assignment.TechnicianName)
		}
	}
	return summary
}

// archiveReport uploads the report JSON to object storage. Archiving is
// best effort and never fails the run.
func (s *supervisorService) archiveReport(ctx context.Context, report *model.SiteReport) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	key := fmt.Sprintf("reports/%s/%s.json", report.SiteID, report.Timestamp.Format("2006-01-02T15-04-05Z"))
	s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "application/json",
	})
}

// persistAlert records a critical finding. Failures never abort the run.
func (s *supervisorService) persistAlert(ctx context.Context, j pumpJob, assessment *model.RiskAssessment) {
	if s.alerts == nil {
		return
	}
	_, err := s.alerts.Create(ctx, &model.Alert{
		AlertID:     makeID("ALERT"),
		SiteID:      j.siteID,
		BuildingID:  j.buildingID,
		AssetID:     j.pumpID,
		AssetType:   model.AssetTypePump,
		AlertType:   "failure_risk",
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("Failure risk %.1f%%: %s", assessment.RiskScore*100, strings.Join(topSignals(assessment.Signals, 2), "; ")),
		Value:       assessment.RiskScore,
		CreatedAt:   s.now(),
	})
	if err == nil {
		metrics.AlertsRaised.WithLabelValues(model.SeverityCritical).Inc()
	}
}

func topSignals(signals []string, n int) []string {
	if len(signals) > n {
		return signals[:n]
	}
	return signals
}
