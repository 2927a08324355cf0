package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	deploymentTotal    *prometheus.CounterVec
	deploymentDuration prometheus.Histogram
	activeDeployments  prometheus.Gauge

	discoveryTotal     *prometheus.CounterVec
	discoveryDuration  prometheus.Histogram
	extensionsResolved *prometheus.CounterVec
	discoveryGapsTotal prometheus.Counter

	extensionsRegistered *prometheus.GaugeVec

	storeOperationsTotal *prometheus.CounterVec
	storeEntriesExpired  prometheus.Counter

	websocketClients   prometheus.Gauge
	watcherEventsTotal *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			deploymentTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "deployment_total",
					Help: "Total artifact deployments by status.",
				},
				[]string{"status"},
			),
			deploymentDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "deployment_duration_seconds",
					Help:    "Artifact deployment duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			activeDeployments: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_deployments",
					Help: "Current deployed artifact count.",
				},
			),
			discoveryTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "discovery_total",
					Help: "Total extension discovery passes by status.",
				},
				[]string{"status"},
			),
			discoveryDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "discovery_duration_seconds",
					Help:    "Extension discovery pass duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			extensionsResolved: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "extensions_resolved_total",
					Help: "Total extension models resolved by discovery route.",
				},
				[]string{"route"},
			),
			discoveryGapsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "discovery_gaps_total",
					Help: "Total plugins providing no discovery mechanism.",
				},
			),
			extensionsRegistered: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "extensions_registered",
					Help: "Extensions registered per deployed artifact.",
				},
				[]string{"artifact"},
			),
			storeOperationsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "objectstore_operations_total",
					Help: "Total object store operations by operation.",
				},
				[]string{"operation"},
			),
			storeEntriesExpired: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "objectstore_entries_expired_total",
					Help: "Total object store entries removed by expiry sweeps.",
				},
			),
			websocketClients: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "websocket_clients",
					Help: "Current websocket event stream client count.",
				},
			),
			watcherEventsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "watcher_events_total",
					Help: "Total artifact watcher events by operation.",
				},
				[]string{"operation"},
			),
		}

		prometheus.MustRegister(
			m.deploymentTotal,
			m.deploymentDuration,
			m.activeDeployments,
			m.discoveryTotal,
			m.discoveryDuration,
			m.extensionsResolved,
			m.discoveryGapsTotal,
			m.extensionsRegistered,
			m.storeOperationsTotal,
			m.storeEntriesExpired,
			m.websocketClients,
			m.watcherEventsTotal,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordDeployment(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.deploymentTotal.WithLabelValues(status).Inc()
	m.deploymentDuration.Observe(duration.Seconds())
}

func SetActiveDeployments(count int) {
	m := getMetrics()
	m.activeDeployments.Set(float64(count))
}

func RecordDiscovery(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.discoveryTotal.WithLabelValues(status).Inc()
	m.discoveryDuration.Observe(duration.Seconds())
}

func RecordExtensionResolved(route string) {
	m := getMetrics()
	m.extensionsResolved.WithLabelValues(route).Inc()
}

func RecordDiscoveryGap() {
	m := getMetrics()
	m.discoveryGapsTotal.Inc()
}

func SetExtensionsRegistered(artifactName string, count int) {
	m := getMetrics()
	m.extensionsRegistered.WithLabelValues(artifactName).Set(float64(count))
}

func ClearExtensionsRegistered(artifactName string) {
	m := getMetrics()
	m.extensionsRegistered.DeleteLabelValues(artifactName)
}

func RecordStoreOperation(operation string) {
	m := getMetrics()
	m.storeOperationsTotal.WithLabelValues(operation).Inc()
}

func RecordStoreExpiry(removed int) {
	m := getMetrics()
	m.storeEntriesExpired.Add(float64(removed))
}

func SetWebsocketClients(count int) {
	m := getMetrics()
	m.websocketClients.Set(float64(count))
}

func RecordWatcherEvent(operation string) {
	m := getMetrics()
	m.watcherEventsTotal.WithLabelValues(operation).Inc()
}
