package mqtt

import "github.com/prometheus/client_golang/prometheus"

var (
	publishTotal  *prometheus.CounterVec
	controlsTotal *prometheus.CounterVec
)

func newCollectors() {
	publishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_mqtt_publish_total",
		Help: "MQTT publish attempts by topic kind and result",
	}, []string{"kind", "result"})
	controlsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobgate_mqtt_controls_total",
		Help: "Control commands received over MQTT by result",
	}, []string{"result"})
}

func init() {
	newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers bridge metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(publishTotal, controlsTotal)
}

// ResetMetrics reinitializes collectors for tests.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
