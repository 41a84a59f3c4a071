// Package metrics exposes Prometheus counters for record and structure I/O.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpRead  = "read"
	OpWrite = "write"
	OpStore = "store"
	OpLoad  = "load"
)

// Metrics holds the binrec counters. Each instance owns its registry so that
// several can coexist in one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recordsTotal *prometheus.CounterVec
	bytesTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates and registers all counters
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binrec_records_total",
				Help: "Total number of records and structures moved, by schema and operation",
			},
			[]string{"schema", "op"},
		),

		bytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binrec_bytes_total",
				Help: "Total number of encoded bytes moved, by operation",
			},
			[]string{"op"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binrec_errors_total",
				Help: "Total number of failed operations",
			},
			[]string{"op"},
		),
	}
}

// Registry returns the registry holding the counters
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Record counts one record of schemaName moved by op, n bytes long
func (m *Metrics) Record(schemaName, op string, n int64) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(schemaName, op).Inc()
	m.bytesTotal.WithLabelValues(op).Add(float64(n))
}

// Error counts one failed op
func (m *Metrics) Error(op string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(op).Inc()
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
