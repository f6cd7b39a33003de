// Package metrics provides Prometheus instrumentation for the search client.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all search-probe metrics.
	Namespace = "search_probe"

	// Subsystem is the subsystem for client metrics.
	Subsystem = "client"
)

// Metrics holds the client collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	InFlightRequests  prometheus.Gauge
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates and registers all client metrics on reg.
// If reg is nil a private registry is used.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.initTransportMetrics(factory)
	m.initOperationMetrics(factory)

	return m
}

func (m *Metrics) initTransportMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "requests_total",
			Help:      "HTTP requests sent to the search service",
		},
		[]string{"code", "method"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of HTTP requests to the search service",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"method"},
	)

	m.InFlightRequests = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently in flight",
		},
	)
}

func (m *Metrics) initOperationMetrics(factory promauto.Factory) {
	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "operations_total",
			Help:      "Client operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of client operations including body decoding",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"operation"},
	)
}

// InstrumentTransport wraps next so every round trip is counted and timed.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(m.InFlightRequests,
		promhttp.InstrumentRoundTripperCounter(m.RequestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next),
		),
	)
}

// ObserveOperation records one finished client operation.
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// OperationStat is one row of the operation summary.
type OperationStat struct {
	Operation string
	Outcome   string
	Count     uint64
}

// Summary returns per-operation counts, sorted by operation then outcome.
func (m *Metrics) Summary() ([]OperationStat, error) {
	if m == nil {
		return nil, nil
	}

	families, err := m.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	name := prometheus.BuildFQName(Namespace, Subsystem, "operations_total")
	var stats []OperationStat
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			stat := OperationStat{Count: uint64(metric.GetCounter().GetValue())}
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "operation":
					stat.Operation = label.GetValue()
				case "outcome":
					stat.Outcome = label.GetValue()
				}
			}
			stats = append(stats, stat)
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Operation != stats[j].Operation {
			return stats[i].Operation < stats[j].Operation
		}
		return stats[i].Outcome < stats[j].Outcome
	})
	return stats, nil
}
