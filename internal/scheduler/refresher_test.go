package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/application"
	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
	"github.com/wms-platform/picker-performance-service/pkg/resilience"
)

type stubComputer struct {
	ComputeDashboardFn func(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error)
}

func (s *stubComputer) ComputeDashboard(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
	return s.ComputeDashboardFn(ctx, at, trigger)
}

type stubPublisher struct {
	mu        sync.Mutex
	err       error
	calls     int
	published []*cloudevents.WMSCloudEvent
	topics    []string
}

func (s *stubPublisher) PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.topics = append(s.topics, topic)
	s.published = append(s.published, event)
	return nil
}

var evaluated = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

func testDashboard(t *testing.T) *analytics.Dashboard {
	t.Helper()
	john, err := domain.NewPicker("P-1", "John Smith", 80)
	require.NoError(t, err)
	require.NoError(t, john.RecordHourlyLines(9, 10))
	require.NoError(t, john.RecordHourlyLines(10, 10))

	sched := analytics.DefaultSchedule()
	sched.Location = time.UTC
	d, err := analytics.BuildDashboard([]*domain.Picker{john}, evaluated, sched)
	require.NoError(t, err)
	return d
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	cfg.Retry = &resilience.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1,
	}
	return cfg
}

func newTestRefresher(cfg Config, computer DashboardComputer, publisher kafka.EventPublisher, m *metrics.Metrics) *Refresher {
	r := NewRefresher(cfg, computer, publisher, cloudevents.NewEventFactory(cloudevents.SourcePickerPerformance), m, logging.New(logging.DefaultConfig("test")))
	r.now = func() time.Time { return evaluated }
	return r
}

func TestRunOnce(t *testing.T) {
	d := testDashboard(t)
	var gotAt time.Time
	var gotTrigger string
	computer := &stubComputer{ComputeDashboardFn: func(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
		gotAt, gotTrigger = at, trigger
		return d, nil
	}}
	publisher := &stubPublisher{}
	m := metrics.New(metrics.DefaultConfig("test"))
	r := newTestRefresher(testConfig(), computer, publisher, m)

	require.NoError(t, r.RunOnce(context.Background()))

	assert.Equal(t, evaluated, gotAt)
	assert.Equal(t, application.TriggerScheduled, gotTrigger)
	assert.Same(t, d, r.Last())

	require.Len(t, publisher.published, 1)
	assert.Equal(t, kafka.Topics.DashboardSnapshots, publisher.topics[0])
	event := publisher.published[0]
	assert.Equal(t, cloudevents.DashboardRefreshed, event.Type)
	assert.Equal(t, evaluated, event.Time)

	summary, ok := event.Data.(*DashboardRefreshedEvent)
	require.True(t, ok)
	assert.Equal(t, 20, summary.TotalLines)
	assert.Equal(t, 1, summary.ActivePickers)
	assert.NotNil(t, summary.Alerts)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActivePickers))
	assert.Equal(t, 80.0, testutil.ToFloat64(m.TeamTargetLines))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotPublishResults.WithLabelValues("test", "success")))
}

func TestRunOnce_PublishFailureRetriesAndKeepsDashboard(t *testing.T) {
	d := testDashboard(t)
	computer := &stubComputer{ComputeDashboardFn: func(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
		return d, nil
	}}
	publisher := &stubPublisher{err: errors.New("broker unavailable")}
	m := metrics.New(metrics.DefaultConfig("test"))
	r := newTestRefresher(testConfig(), computer, publisher, m)

	err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, publisher.calls)
	assert.Same(t, d, r.Last())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotPublishResults.WithLabelValues("test", "error")))
}

func TestRunOnce_ComputeFailureSkipsPublish(t *testing.T) {
	boom := errors.New("mongo down")
	computer := &stubComputer{ComputeDashboardFn: func(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
		return nil, boom
	}}
	publisher := &stubPublisher{}
	r := newTestRefresher(testConfig(), computer, publisher, nil)

	err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, publisher.calls)
	assert.Nil(t, r.Last())
}

func TestRunOnce_BreakerOpensAfterFailures(t *testing.T) {
	d := testDashboard(t)
	computer := &stubComputer{ComputeDashboardFn: func(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
		return d, nil
	}}
	publisher := &stubPublisher{err: errors.New("broker unavailable")}

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Breaker = resilience.DefaultCircuitBreakerConfig("test-breaker")
	cfg.Breaker.FailureThreshold = 2
	cfg.Breaker.Timeout = time.Hour
	r := newTestRefresher(cfg, computer, publisher, nil)

	require.Error(t, r.RunOnce(context.Background()))
	require.Error(t, r.RunOnce(context.Background()))
	assert.Equal(t, 2, publisher.calls)

	err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, publisher.calls)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Schedule = "whenever"
	r := newTestRefresher(cfg, &stubComputer{}, &stubPublisher{}, nil)

	assert.Error(t, r.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	r := newTestRefresher(testConfig(), &stubComputer{}, &stubPublisher{}, nil)

	require.NoError(t, r.Start(context.Background()))
	r.Stop()
}

func TestShiftGauges(t *testing.T) {
	d := testDashboard(t)
	g := ShiftGauges(d)
	assert.Equal(t, 1, g.ActivePickers)
	assert.Equal(t, d.Team.ProjectedTotal, g.ProjectedLines)
	assert.Equal(t, d.Consistency.Score, g.Consistency)
	assert.InDelta(t, 25.0, g.PercentComplete, 1e-9)
}
