package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "highway_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the import
// run and the query API.
type Metrics struct {
	RowsRead          prometheus.Counter
	SegmentsProduced  prometheus.Counter
	EmptySegments     prometheus.Counter
	MergedRows        prometheus.Counter
	LanesProduced     prometheus.Counter
	LanesSkipped      prometheus.Counter
	CriticalLanes     *prometheus.CounterVec // labels: metric={roughness,rutDepth,crackPercent,ravelling}
	DocumentsInserted prometheus.Counter
	PublishErrors     prometheus.Counter
	LanesDetected     prometheus.Gauge
	MissingColumns    prometheus.Gauge

	RunDuration       prometheus.Histogram
	LastSuccessfulRun prometheus.Gauge
	ImportRunning     prometheus.Gauge

	// Query API metrics.
	QueryCache      *prometheus.CounterVec   // labels: result={hit,miss}
	RequestDuration *prometheus.HistogramVec // labels: route, code
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from survey sheets.",
		}),
		SegmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_produced_total",
			Help:      "Segment documents produced by the transform.",
		}),
		EmptySegments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_segments_total",
			Help:      "Rows discarded because no lane had a location or roughness reading.",
		}),
		MergedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merged_rows_total",
			Help:      "Rows folded into an earlier segment with the same chainage.",
		}),
		LanesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lanes_produced_total",
			Help:      "Lanes written into segment documents.",
		}),
		LanesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lanes_skipped_total",
			Help:      "Lanes dropped for lacking a location and a roughness reading.",
		}),
		CriticalLanes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "critical_lanes_total",
			Help:      "Lanes classified critical, by metric.",
		}, []string{"metric"}),
		DocumentsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_inserted_total",
			Help:      "Documents stored in the sink collection.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish segments to Kafka.",
		}),
		LanesDetected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lanes_detected",
			Help:      "Distinct lane IDs discovered on the last sheet read.",
		}),
		MissingColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_columns",
			Help:      "Expected canonical columns absent from the last sheet read.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete import run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSuccessfulRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last import run that completed.",
		}),
		ImportRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_running",
			Help:      "1 while an import run is active, 0 otherwise.",
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Segment cache lookups by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Query API request duration by route and status code.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "code"}),
	}
}

// Collectors lists every metric, for registration or a Pushgateway push.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.SegmentsProduced,
		m.EmptySegments,
		m.MergedRows,
		m.LanesProduced,
		m.LanesSkipped,
		m.CriticalLanes,
		m.DocumentsInserted,
		m.PublishErrors,
		m.LanesDetected,
		m.MissingColumns,
		m.RunDuration,
		m.LastSuccessfulRun,
		m.ImportRunning,
		m.QueryCache,
		m.RequestDuration,
	}
}
