// Package factory builds pluggable components from configuration entries of
// the form {type, conf}. jobgate uses it for metric sinks:
//
//	metrics:
//	  sinks:
//	    - type: prometheus
//	    - type: influx
//	      conf: {url: "http://influx:8086", bucket: jobgate}
//
// infra/metrics registers a factory per sink type at init, and
// core/metrics.NewMetricsSink turns the list into a single MetricsSink.
package factory
