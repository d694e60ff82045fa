package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/jobgate/core/metrics"
)

// PromSink records outcomes and admissions in Prometheus metrics.
type PromSink struct {
	outcomes   *prometheus.CounterVec
	wait       *prometheus.HistogramVec
	admissions *prometheus.CounterVec
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The metrics are served by the admin HTTP server.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_sink_outcomes_total",
		Help: "Dispatch outcomes by configuration and result",
	}, []string{"configuration", "accepted"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobgate_sink_wait_seconds",
		Help:    "Time between submission and dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"accepted"})
	admissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_sink_admissions_total",
		Help: "Submissions by admission result",
	}, []string{"admission"})

	var err error
	if outcomes, err = registerOrReuse(reg, outcomes); err != nil {
		return nil, err
	}
	if wait, err = registerOrReuse(reg, wait); err != nil {
		return nil, err
	}
	if admissions, err = registerOrReuse(reg, admissions); err != nil {
		return nil, err
	}
	return &PromSink{outcomes: outcomes, wait: wait, admissions: admissions}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordOutcome counts the outcome and observes its queue wait.
func (s *PromSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	acc := strconv.FormatBool(ev.Accepted)
	s.outcomes.WithLabelValues(ev.Configuration, acc).Inc()
	s.wait.WithLabelValues(acc).Observe(ev.Wait.Seconds())
	return nil
}

// RecordAdmission counts the admission result.
func (s *PromSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	s.admissions.WithLabelValues(ev.Admission).Inc()
	return nil
}
