package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	submissionsTotal *prometheus.CounterVec
	outcomesTotal    *prometheus.CounterVec
	controlsTotal    *prometheus.CounterVec
	queueDepth       prometheus.Gauge
	ticksTotal       prometheus.Counter
	tickStops        prometheus.Counter
	queueDiscarded   prometheus.Counter
	dispatchDuration prometheus.Histogram
	queueWait        prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() {
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobgate_submissions_total",
			Help: "Submissions by admission result",
		},
		[]string{"admission"},
	)
	outcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobgate_outcomes_total",
			Help: "Dispatched records by final result",
		},
		[]string{"result"},
	)
	controlsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobgate_controls_total",
			Help: "Control commands applied",
		},
		[]string{"method"},
	)
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobgate_queue_depth",
		Help: "Records waiting in the admission queue",
	})
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobgate_ticks_total",
		Help: "Ticks observed by the dispatch loop",
	})
	tickStops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobgate_idle_tick_stops_total",
		Help: "Times the tick stopped because the queue was empty",
	})
	queueDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobgate_queue_discarded_total",
		Help: "Records dropped from the queue at shutdown",
	})
	dispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobgate_dispatch_duration_seconds",
		Help:    "Time spent in dispatch per record",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	queueWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobgate_queue_wait_seconds",
		Help:    "Time between submission and dispatch",
		Buckets: prometheus.DefBuckets,
	})
}

func init() {
	newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(submissionsTotal, outcomesTotal, controlsTotal, queueDepth,
		ticksTotal, tickStops, queueDiscarded, dispatchDuration, queueWait)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
