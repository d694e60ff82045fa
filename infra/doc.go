// Package infra holds the adapters around the dispatch core: the UDP
// transport, the MQTT bridge, metric sinks, Sentry and zerolog. They
// depend on the interfaces in core and never the other way round.
package infra
