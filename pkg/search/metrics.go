package search

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors a Searcher reports to. The zero
// value is not usable; construct one with NewMetrics and register it, or
// leave a Searcher's Metrics field nil to opt out entirely (every call
// site nil-checks before using it).
type Metrics struct {
	filesScanned *prometheus.CounterVec
	matches      *prometheus.CounterVec
	scanErrors   prometheus.Counter
	scanDuration prometheus.Histogram
}

// NewMetrics builds a Metrics and registers its collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		filesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logsearch_files_scanned_total",
			Help: "Number of files scanned, by outcome status.",
		}, []string{"status"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logsearch_matches_total",
			Help: "Number of match records produced, by tag.",
		}, []string{"tag"}),
		scanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logsearch_file_scan_errors_total",
			Help: "Number of per-file scan failures.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logsearch_scan_duration_seconds",
			Help:    "Wall time spent scanning a single file.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.filesScanned, m.matches, m.scanErrors, m.scanDuration)
	return m
}

func (m *Metrics) observeScan(path string, results []Match, err error, elapsed interface{ Seconds() float64 }) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.filesScanned.WithLabelValues("error").Inc()
		m.scanErrors.Inc()
		return
	}
	m.filesScanned.WithLabelValues("ok").Inc()
	for _, r := range results {
		m.matches.WithLabelValues(r.Tag).Inc()
	}
}
