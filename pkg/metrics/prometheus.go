// Package metrics provides Prometheus metrics for a reward scan run.
//
// The CLI does not serve an endpoint; a finished run can be written to a
// node_exporter textfile with WriteTextfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a scan.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Fetch metrics
	fetchRequests *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	// Extraction metrics
	candidates       *prometheus.CounterVec
	recordsExtracted prometheus.Gauge

	// Reconciliation metrics
	sourceEntries *prometheus.GaugeVec
	peers         prometheus.Gauge
	rewardTotal   *prometheus.GaugeVec

	// Classification metrics
	categoryPeers *prometheus.GaugeVec
	newPeers      prometheus.Gauge

	lastUpdated prometheus.Gauge
	lastRunUnix prometheus.Gauge
	runDuration prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rewardscan",
		subsystem:        "scan",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.fetchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_requests_total"),
		Help:        "Total number of remote fetches by target and outcome",
		ConstLabels: labels,
	}, []string{"target", "outcome"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_duration_seconds"),
		Help:        "Remote fetch duration in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"target"})

	m.candidates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_total"),
		Help:        "Candidate fragments found in the script bundle by parse result",
		ConstLabels: labels,
	}, []string{"result"})

	m.recordsExtracted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_extracted"),
		Help:        "Number of merged peer records extracted from the script bundle",
		ConstLabels: labels,
	})

	m.sourceEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_entries"),
		Help:        "Number of entries read from each data source",
		ConstLabels: labels,
	}, []string{"source"})

	m.peers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("peers"),
		Help:        "Number of distinct peers after reconciliation",
		ConstLabels: labels,
	})

	m.rewardTotal = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reward_total"),
		Help:        "Sum of rewards across all peers per bucket",
		ConstLabels: labels,
	}, []string{"bucket"})

	m.categoryPeers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("category_peers"),
		Help:        "Number of peers in each activity category",
		ConstLabels: labels,
	}, []string{"category"})

	m.newPeers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("new_peers"),
		Help:        "Number of peers that first earned rewards in the current period",
		ConstLabels: labels,
	})

	m.lastUpdated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("data_last_updated_unix"),
		Help:        "Last updated time printed by the rewards page",
		ConstLabels: labels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("last_run_unix"),
		Help:        "Time the last scan finished",
		ConstLabels: labels,
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("run_duration_seconds"),
		Help:        "Duration of the last scan in seconds",
		ConstLabels: labels,
	})
}

// RecordFetch records one remote fetch and its outcome.
func RecordFetch(target string, d time.Duration, err error) {
	globalManager.RecordFetch(target, d, err)
}

// RecordFetch records one remote fetch and its outcome.
func (m *Manager) RecordFetch(target string, d time.Duration, err error) {
	if !m.enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetchRequests.WithLabelValues(target, outcome).Inc()
	m.fetchDuration.WithLabelValues(target).Observe(d.Seconds())
}

// RecordCandidate counts a candidate fragment by whether it parsed.
func RecordCandidate(parsed bool) {
	if !globalManager.enabled {
		return
	}
	result := "parsed"
	if !parsed {
		result = "dropped"
	}
	globalManager.candidates.WithLabelValues(result).Inc()
}

// RecordRecordsExtracted sets the number of merged records from the bundle.
func RecordRecordsExtracted(n int) {
	if globalManager.enabled {
		globalManager.recordsExtracted.Set(float64(n))
	}
}

// RecordSourceEntries sets the entry count of one data source.
func RecordSourceEntries(source string, n int) {
	if globalManager.enabled {
		globalManager.sourceEntries.WithLabelValues(source).Set(float64(n))
	}
}

// UpdatePeerCount sets the number of reconciled peers.
func UpdatePeerCount(n int) {
	if globalManager.enabled {
		globalManager.peers.Set(float64(n))
	}
}

// UpdateRewardTotal sets the network-wide reward sum of a bucket.
func UpdateRewardTotal(bucket string, v float64) {
	if globalManager.enabled {
		globalManager.rewardTotal.WithLabelValues(bucket).Set(v)
	}
}

// UpdateCategoryCount sets the number of peers in a category.
func UpdateCategoryCount(category string, n int) {
	if globalManager.enabled {
		globalManager.categoryPeers.WithLabelValues(category).Set(float64(n))
	}
}

// UpdateNewPeers sets the number of new peers.
func UpdateNewPeers(n int) {
	if globalManager.enabled {
		globalManager.newPeers.Set(float64(n))
	}
}

// UpdateLastUpdated records the data timestamp printed by the site.
func UpdateLastUpdated(t time.Time) {
	if globalManager.enabled && !t.IsZero() {
		globalManager.lastUpdated.Set(float64(t.Unix()))
	}
}

// RecordRun records the end of a scan that started at start.
func RecordRun(start time.Time) {
	if !globalManager.enabled {
		return
	}
	now := time.Now()
	globalManager.lastRunUnix.Set(float64(now.Unix()))
	globalManager.runDuration.Set(now.Sub(start).Seconds())
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every metric of the custom registry to path in the
// text exposition format.
func WriteTextfile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
