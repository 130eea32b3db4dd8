package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPending   prometheus.Gauge
	OutboxPublished *prometheus.CounterVec
	OutboxRetries   *prometheus.CounterVec

	// Shift metrics
	LinesRecorded          *prometheus.CounterVec
	DashboardComputations  *prometheus.CounterVec
	DashboardComputeTime   prometheus.Histogram
	TeamEfficiency         prometheus.Gauge
	TeamProjectedLines     prometheus.Gauge
	TeamTargetLines        prometheus.Gauge
	TeamConsistency        prometheus.Gauge
	ShiftPercentComplete   prometheus.Gauge
	ActivePickers          prometheus.Gauge
	SnapshotPublishResults *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// New creates a new Metrics instance on its own registry.
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ns := config.Namespace
	service := prometheus.Labels{"service": config.ServiceName}

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"service", "method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"service", "method", "path"})

	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "http_requests_in_flight",
		Help:        "Number of HTTP requests currently being processed",
		ConstLabels: service,
	})

	m.KafkaEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "kafka_events_published_total",
		Help:      "Total number of Kafka events published",
	}, []string{"service", "topic", "event_type", "status"})

	m.KafkaPublishDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "kafka_publish_duration_seconds",
		Help:      "Kafka publish duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"service", "topic"})

	m.MongoDBOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "mongodb_operations_total",
		Help:      "Total number of MongoDB operations",
	}, []string{"service", "collection", "operation", "status"})

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "mongodb_operation_duration_seconds",
		Help:      "MongoDB operation duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"service", "collection", "operation"})

	m.OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "outbox_pending_events",
		Help:        "Outbox events waiting to be published",
		ConstLabels: service,
	})

	m.OutboxPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "outbox_events_published_total",
		Help:      "Outbox events handed to Kafka",
	}, []string{"service", "event_type", "status"})

	m.OutboxRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "outbox_event_retries_total",
		Help:      "Outbox publish retries",
	}, []string{"service", "event_type"})

	m.LinesRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "picker_hourly_records_total",
		Help:      "Hourly line records written, by shift hour",
	}, []string{"service", "hour"})

	m.DashboardComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "dashboard_computations_total",
		Help:      "Dashboard computation passes",
	}, []string{"service", "trigger", "status"})

	m.DashboardComputeTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   ns,
		Name:        "dashboard_compute_duration_seconds",
		Help:        "Time to load pickers and compute a dashboard",
		Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		ConstLabels: service,
	})

	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        name,
			Help:        help,
			ConstLabels: service,
		})
	}
	m.TeamEfficiency = gauge("team_efficiency_percent", "Team lines as a percentage of the team target")
	m.TeamProjectedLines = gauge("team_projected_lines", "Projected end-of-shift team lines")
	m.TeamTargetLines = gauge("team_target_lines", "Team shift target in lines")
	m.TeamConsistency = gauge("team_consistency_score", "Consistency score for the current shift hour")
	m.ShiftPercentComplete = gauge("shift_percent_complete", "Elapsed share of the shift window")
	m.ActivePickers = gauge("active_pickers", "Pickers currently in active status")

	m.SnapshotPublishResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "dashboard_snapshot_publish_total",
		Help:      "Scheduled dashboard snapshot publishes",
	}, []string{"service", "status"})

	m.CircuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"service", "name"})

	m.CircuitBreakerTrips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	}, []string{"service", "name"})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.OutboxPending,
		m.OutboxPublished,
		m.OutboxRetries,
		m.LinesRecorded,
		m.DashboardComputations,
		m.DashboardComputeTime,
		m.TeamEfficiency,
		m.TeamProjectedLines,
		m.TeamTargetLines,
		m.TeamConsistency,
		m.ShiftPercentComplete,
		m.ActivePickers,
		m.SnapshotPublishResults,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordKafkaPublish records a Kafka publish
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, statusLabel(success)).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, statusLabel(success)).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// SetOutboxPending sets the number of unpublished outbox events
func (m *Metrics) SetOutboxPending(count int) {
	m.OutboxPending.Set(float64(count))
}

// RecordOutboxPublish records one outbox event publish attempt
func (m *Metrics) RecordOutboxPublish(eventType string, success bool) {
	m.OutboxPublished.WithLabelValues(m.serviceName, eventType, statusLabel(success)).Inc()
}

// RecordOutboxRetry records an outbox retry
func (m *Metrics) RecordOutboxRetry(eventType string) {
	m.OutboxRetries.WithLabelValues(m.serviceName, eventType).Inc()
}

// RecordLinesRecorded counts an hourly line record
func (m *Metrics) RecordLinesRecorded(hour int) {
	m.LinesRecorded.WithLabelValues(m.serviceName, strconv.Itoa(hour)).Inc()
}

// RecordDashboardComputation records one dashboard computation pass
func (m *Metrics) RecordDashboardComputation(trigger string, success bool, duration time.Duration) {
	m.DashboardComputations.WithLabelValues(m.serviceName, trigger, statusLabel(success)).Inc()
	m.DashboardComputeTime.Observe(duration.Seconds())
}

// ShiftGauges is the set of values exported after each scheduled dashboard refresh.
type ShiftGauges struct {
	EfficiencyPercent float64
	ProjectedLines    int
	TargetLines       int
	Consistency       int
	PercentComplete   float64
	ActivePickers     int
}

// SetShiftGauges updates the shift gauges in one call
func (m *Metrics) SetShiftGauges(g ShiftGauges) {
	m.TeamEfficiency.Set(g.EfficiencyPercent)
	m.TeamProjectedLines.Set(float64(g.ProjectedLines))
	m.TeamTargetLines.Set(float64(g.TargetLines))
	m.TeamConsistency.Set(float64(g.Consistency))
	m.ShiftPercentComplete.Set(g.PercentComplete)
	m.ActivePickers.Set(float64(g.ActivePickers))
}

// RecordSnapshotPublish records a scheduled snapshot publish outcome
func (m *Metrics) RecordSnapshotPublish(success bool) {
	m.SnapshotPublishResults.WithLabelValues(m.serviceName, statusLabel(success)).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
