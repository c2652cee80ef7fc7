package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every application metric. A nil *Collector is valid and
// records nothing, which keeps services usable in tests without a registry.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	CareRecordLoads    *prometheus.CounterVec
	CareRecordDuration prometheus.Histogram
	DegradedFetches    *prometheus.CounterVec

	RoleChanges   *prometheus.CounterVec
	Reassignments *prometheus.CounterVec
	NotesWritten  prometheus.Counter

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
	AuditWriteFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector registers the metrics on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration against the default registry.
func NewCollector(serviceName string, reg *prometheus.Registry) *Collector {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	f := promauto.With(reg)

	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		CareRecordLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "care_record",
			Name:      "loads_total",
			Help:      "Care record aggregations by result.",
		}, []string{"result"}),

		CareRecordDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "care_record",
			Name:      "load_duration_seconds",
			Help:      "Wall time to aggregate one care record.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),

		DegradedFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "care_record",
			Name:      "degraded_fetches_total",
			Help:      "Dependent collections replaced by an empty set after a fetch failure.",
		}, []string{"collection"}),

		RoleChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "relationships",
			Name:      "role_changes_total",
			Help:      "Stored role rewrites by resulting role.",
		}, []string{"role"}),

		Reassignments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "relationships",
			Name:      "reassignments_total",
			Help:      "Patient caregiver changes by kind (update, insert, unassign, noop).",
		}, []string{"kind"}),

		NotesWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "notes",
			Name:      "written_total",
			Help:      "Total timeline notes written.",
		}),

		AuditEntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),

		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "write_failures_total",
			Help:      "Audit entries that failed to persist.",
		}),

		gatherer: reg,
	}
}

func (c *Collector) CareRecordLoaded(result string, seconds float64) {
	if c == nil {
		return
	}
	c.CareRecordLoads.WithLabelValues(result).Inc()
	c.CareRecordDuration.Observe(seconds)
}

func (c *Collector) FetchDegraded(collection string) {
	if c == nil {
		return
	}
	c.DegradedFetches.WithLabelValues(collection).Inc()
}

func (c *Collector) RoleChanged(role string) {
	if c == nil {
		return
	}
	c.RoleChanges.WithLabelValues(role).Inc()
}

func (c *Collector) Reassigned(kind string) {
	if c == nil {
		return
	}
	c.Reassignments.WithLabelValues(kind).Inc()
}

func (c *Collector) NoteWritten() {
	if c == nil {
		return
	}
	c.NotesWritten.Inc()
}

func (c *Collector) AuditWritten() {
	if c == nil {
		return
	}
	c.AuditEntriesTotal.Inc()
}

func (c *Collector) AuditDropped() {
	if c == nil {
		return
	}
	c.AuditBufferDropped.Inc()
}

func (c *Collector) AuditFailed() {
	if c == nil {
		return
	}
	c.AuditWriteFailures.Inc()
}

// Handler exposes the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
