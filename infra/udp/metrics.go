package udp

import "github.com/prometheus/client_golang/prometheus"

var (
	datagramsTotal *prometheus.CounterVec
	repliesTotal   *prometheus.CounterVec
	outboxDepth    prometheus.Gauge
)

func newCollectors() {
	datagramsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_udp_datagrams_total",
		Help: "Inbound datagrams by result",
	}, []string{"result"})
	repliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_udp_replies_total",
		Help: "Outbound replies by result",
	}, []string{"result"})
	outboxDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobgate_udp_outbox_depth",
		Help: "Replies waiting for the socket writer",
	})
}

func init() {
	newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers transport metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(datagramsTotal, repliesTotal, outboxDepth)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
