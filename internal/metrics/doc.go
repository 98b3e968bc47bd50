// Package metrics exports the result of a run in the Prometheus text format.
//
// A Recorder owns a private registry so that a run's metrics never mix
// with the default registry. The output is meant for the node exporter
// textfile collector.
package metrics
