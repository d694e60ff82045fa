// Package metrics defines the sinks that record admission and dispatch
// outcomes. Sinks like PromSink and InfluxSink live in infra/metrics and
// register themselves by name; NewMetricsSink builds one or a MultiSink from
// configuration.
package metrics
