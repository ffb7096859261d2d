package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_readings_ingested_total",
		Help: "Total number of sensor readings stored, labelled by source.",
	}, []string{"source"})

	ReadingsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homenet_readings_rejected_total",
		Help: "Total number of sensor payloads rejected during validation.",
	})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_alerts_raised_total",
		Help: "Total number of alerts raised, labelled by severity.",
	}, []string{"severity"})

	WorkOrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_work_orders_created_total",
		Help: "Total number of work orders created, labelled by priority.",
	}, []string{"priority"})

	WorkOrdersDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homenet_work_orders_deduplicated_total",
		Help: "Total number of work order requests suppressed as duplicates.",
	})

	SupervisorRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_supervisor_runs_total",
		Help: "Total number of supervisor runs, labelled by site and status.",
	}, []string{"site_id", "status"})

	SupervisorRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "homenet_supervisor_run_duration_ms",
		Help:    "End-to-end supervisor run latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	ForecastsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_forecasts_served_total",
		Help: "Total number of demand forecasts computed, labelled by demand level.",
	}, []string{"demand_level"})

	RiskAssessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homenet_risk_assessments_total",
		Help: "Total number of risk assessments computed, labelled by risk level.",
	}, []string{"risk_level"})
)
