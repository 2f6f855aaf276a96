package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	LoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classlint_load_seconds",
		Help:    "Time spent loading class files from one input.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	ClassesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlint_classes_loaded_total",
		Help: "Total number of class files parsed for analysis.",
	})

	LoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlint_load_failures_total",
		Help: "Total number of inputs the loader rejected.",
	})

	ResolverLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classlint_resolver_lookups_total",
		Help: "Class resolver lookups by outcome (hit, loaded, absent).",
	}, []string{"outcome"})

	CheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classlint_check_seconds",
		Help:    "Time spent running one check over one class.",
		Buckets: []float64{.00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"check"})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classlint_findings_total",
		Help: "Total number of findings reported per check.",
	}, []string{"check", "category"})

	CheckPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classlint_check_panics_total",
		Help: "Total number of recovered panics per check.",
	}, []string{"check"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classlint_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	AnalyzedClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classlint_analyzed_classes",
		Help: "Number of classes in the most recent analysis run.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlint_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRunsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlint_watcher_runs_throttled_total",
		Help: "Total number of re-analysis runs delayed by the rate limiter.",
	})
)
