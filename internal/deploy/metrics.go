package deploy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deploy_runs_started_total",
		Help: "Total number of deployment runs started",
	})

	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploy_runs_finished_total",
		Help: "Total number of deployment runs by terminal status",
	}, []string{"status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deploy_run_duration_seconds",
		Help:    "Duration of deployment runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"status"})

	runsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deploy_runs_active",
		Help: "Number of deployment runs currently queued or executing",
	})

	poolTaskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploy_pool_task_failures_total",
		Help: "Total number of pool tasks that returned an error or panicked",
	}, []string{"kind"})

	poolQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deploy_pool_queue_depth",
		Help: "Number of tasks waiting for a worker",
	})

	brokerDroppedSubscribers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deploy_log_stream_dropped_subscribers_total",
		Help: "Total number of log stream subscribers dropped for lagging",
	})
)
