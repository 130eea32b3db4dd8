// Package scheduler periodically recomputes the dashboard, exports shift gauges
// and announces each refresh on Kafka.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/application"
	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
	"github.com/wms-platform/picker-performance-service/pkg/resilience"
)

const breakerName = "dashboard-publisher"

// DashboardComputer computes a dashboard at an instant
type DashboardComputer interface {
	ComputeDashboard(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error)
}

// Config controls the refresh job
type Config struct {
	Schedule string
	Location *time.Location
	// Timeout bounds one refresh, publishing included
	Timeout time.Duration
	Retry   *resilience.RetryConfig
	Breaker *resilience.CircuitBreakerConfig
}

// DefaultConfig refreshes every minute
func DefaultConfig() Config {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 3
	return Config{
		Schedule: "@every 1m",
		Location: time.Local,
		Timeout:  30 * time.Second,
		Retry:    retry,
		Breaker:  resilience.DefaultCircuitBreakerConfig(breakerName),
	}
}

// DashboardRefreshedEvent is the summary published after each refresh
type DashboardRefreshedEvent struct {
	EvaluatedAt          time.Time `json:"evaluatedAt"`
	CurrentHour          int       `json:"currentHour"`
	PickerCount          int       `json:"pickerCount"`
	ActivePickers        int       `json:"activePickers"`
	TotalLines           int       `json:"totalLines"`
	TotalTarget          int       `json:"totalTarget"`
	EfficiencyScore      float64   `json:"efficiencyScore"`
	ProjectedTotal       int       `json:"projectedTotal"`
	OnTrack              bool      `json:"onTrack"`
	Final                bool      `json:"final"`
	Consistency          int       `json:"consistency"`
	LaborEfficiencyRatio int       `json:"laborEfficiencyRatio"`
	Alerts               []string  `json:"alerts"`
}

// Refresher runs the dashboard refresh job
type Refresher struct {
	config       Config
	service      DashboardComputer
	publisher    kafka.EventPublisher
	eventFactory *cloudevents.EventFactory
	breaker      *resilience.CircuitBreaker
	metrics      *metrics.Metrics
	logger       *logging.Logger
	now          func() time.Time

	cron *cron.Cron

	mu   sync.RWMutex
	last *analytics.Dashboard
}

// NewRefresher creates a Refresher. m may be nil.
func NewRefresher(
	config Config,
	service DashboardComputer,
	publisher kafka.EventPublisher,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *Refresher {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Retry == nil {
		config.Retry = resilience.DefaultRetryConfig()
	}
	if config.Breaker == nil {
		config.Breaker = resilience.DefaultCircuitBreakerConfig(breakerName)
	}

	logger = logger.WithComponent("dashboard-refresher")

	var observer resilience.StateObserver
	if m != nil {
		observer = m
	}

	return &Refresher{
		config:       config,
		service:      service,
		publisher:    publisher,
		eventFactory: eventFactory,
		breaker:      resilience.NewCircuitBreaker(config.Breaker, logger.Logger, observer),
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Start schedules the job. The job keeps running until Stop.
func (r *Refresher) Start(ctx context.Context) error {
	cl := cronLogger{logger: r.logger}
	r.cron = cron.New(
		cron.WithLocation(r.config.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := r.cron.AddFunc(r.config.Schedule, func() {
		if err := r.RunOnce(ctx); err != nil {
			r.logger.WithError(err).Warn("Dashboard refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.config.Schedule, err)
	}

	r.cron.Start()
	r.logger.Info("Dashboard refresher started", "schedule", r.config.Schedule)
	return nil
}

// Stop stops scheduling and waits for a running refresh to finish
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.logger.Info("Dashboard refresher stopped")
}

// RunOnce computes the dashboard, updates the gauges and publishes the refresh summary.
// A publish failure is returned, but the computed dashboard is still kept.
func (r *Refresher) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	d, err := r.service.ComputeDashboard(ctx, r.now(), application.TriggerScheduled)
	if err != nil {
		return fmt.Errorf("compute dashboard: %w", err)
	}

	r.mu.Lock()
	r.last = d
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetShiftGauges(ShiftGauges(d))
	}

	event := r.eventFactory.CreateEventAt(ctx, cloudevents.DashboardRefreshed, "dashboard/shift", NewDashboardRefreshedEvent(d), d.EvaluatedAt)
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, r.config.Retry, func() error {
			return r.publisher.PublishEvent(ctx, kafka.Topics.DashboardSnapshots, event)
		})
	})
	if r.metrics != nil {
		r.metrics.RecordSnapshotPublish(err == nil)
	}
	if err != nil {
		return fmt.Errorf("publish dashboard refresh: %w", err)
	}

	r.logger.Debug("Dashboard refreshed",
		"currentHour", d.CurrentHour,
		"pickers", d.PickerCount,
		"alerts", len(d.Alerts),
	)
	return nil
}

// Last returns the most recently computed dashboard, or nil before the first refresh
func (r *Refresher) Last() *analytics.Dashboard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// ShiftGauges extracts the exported gauge values from a dashboard
func ShiftGauges(d *analytics.Dashboard) metrics.ShiftGauges {
	g := metrics.ShiftGauges{
		PercentComplete: d.ShiftProgress.PercentageComplete,
		ActivePickers:   d.ActivePickers,
	}
	if d.Metrics != nil {
		g.EfficiencyPercent = d.Metrics.EfficiencyScore
	}
	if d.Team != nil {
		g.ProjectedLines = d.Team.ProjectedTotal
		g.TargetLines = d.Team.TotalTarget
	}
	if d.Consistency != nil {
		g.Consistency = d.Consistency.Score
	}
	return g
}

// NewDashboardRefreshedEvent summarizes a dashboard for publishing
func NewDashboardRefreshedEvent(d *analytics.Dashboard) *DashboardRefreshedEvent {
	e := &DashboardRefreshedEvent{
		EvaluatedAt:          d.EvaluatedAt,
		CurrentHour:          d.CurrentHour,
		PickerCount:          d.PickerCount,
		ActivePickers:        d.ActivePickers,
		LaborEfficiencyRatio: d.LaborEfficiency.Ratio,
		Alerts:               make([]string, 0, len(d.Alerts)),
	}
	if d.Metrics != nil {
		e.TotalLines = d.Metrics.TotalLines
		e.TotalTarget = d.Metrics.TotalTarget
		e.EfficiencyScore = d.Metrics.EfficiencyScore
	}
	if d.Team != nil {
		e.ProjectedTotal = d.Team.ProjectedTotal
		e.OnTrack = d.Team.OnTrack
		e.Final = d.Team.Final
	}
	if d.Consistency != nil {
		e.Consistency = d.Consistency.Score
	}
	for _, a := range d.Alerts {
		e.Alerts = append(e.Alerts, a.ID)
	}
	return e
}

// cronLogger routes cron's own logging through the service logger
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).Error(msg, keysAndValues...)
}
