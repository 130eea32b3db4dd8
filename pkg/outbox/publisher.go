package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
)

// MetricsRecorder is the subset of the metrics registry the publisher reports to.
type MetricsRecorder interface {
	SetOutboxPending(count int)
	RecordOutboxPublish(eventType string, success bool)
	RecordOutboxRetry(eventType string)
}

// PublisherConfig holds configuration for the outbox publisher
type PublisherConfig struct {
	PollInterval    time.Duration
	BatchSize       int
	Retention       time.Duration // how long published events are kept
	CleanupInterval time.Duration
}

// DefaultPublisherConfig returns default configuration
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval:    time.Second,
		BatchSize:       100,
		Retention:       24 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

// Publisher relays outbox events to Kafka on a ticker
type Publisher struct {
	repo     Repository
	producer kafka.EventPublisher
	logger   *logging.Logger
	metrics  MetricsRecorder
	config   *PublisherConfig

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	stoppedCh    chan struct{}
	publishedCnt int
	failedCnt    int
	lastCleanup  time.Time
}

// NewPublisher creates a new outbox publisher. metrics may be nil.
func NewPublisher(
	repo Repository,
	producer kafka.EventPublisher,
	logger *logging.Logger,
	metrics MetricsRecorder,
	config *PublisherConfig,
) *Publisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	return &Publisher{
		repo:     repo,
		producer: producer,
		logger:   logger.WithComponent("outbox-publisher"),
		metrics:  metrics,
		config:   config,
	}
}

// Start launches the publish loop
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("publisher already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.stoppedCh = make(chan struct{})
	p.lastCleanup = time.Now()

	p.logger.Info("Starting outbox publisher", "interval", p.config.PollInterval, "batchSize", p.config.BatchSize)
	go p.run(ctx, p.stopCh, p.stoppedCh)
	return nil
}

// Stop stops the loop and waits for the in-flight batch to finish
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher not running")
	}
	stopCh, stoppedCh := p.stopCh, p.stoppedCh
	p.mu.Unlock()

	close(stopCh)
	<-stoppedCh

	p.mu.Lock()
	p.running = false
	published, failed := p.publishedCnt, p.failedCnt
	p.mu.Unlock()

	p.logger.Info("Outbox publisher stopped", "published", published, "failed", failed)
	return nil
}

func (p *Publisher) run(ctx context.Context, stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ProcessOnce(ctx)
			p.cleanup(ctx)
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ProcessOnce publishes one batch and reports how many events succeeded and failed.
func (p *Publisher) ProcessOnce(ctx context.Context) (published, failed int) {
	events, err := p.repo.FindUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.WithError(err).Error("Failed to find unpublished events")
		return 0, 0
	}

	if p.metrics != nil {
		p.metrics.SetOutboxPending(len(events))
	}

	for _, event := range events {
		if err := p.publishEvent(ctx, event); err != nil {
			failed++
			p.logger.WithError(err).Error("Failed to publish event",
				"eventId", event.ID,
				"eventType", event.EventType,
				"aggregateId", event.AggregateID,
			)
			if p.metrics != nil {
				p.metrics.RecordOutboxPublish(event.EventType, false)
				p.metrics.RecordOutboxRetry(event.EventType)
			}
			if err := p.repo.IncrementRetry(ctx, event.ID, err.Error()); err != nil {
				p.logger.WithError(err).Error("Failed to increment retry count", "eventId", event.ID)
			}
			continue
		}

		published++
		if p.metrics != nil {
			p.metrics.RecordOutboxPublish(event.EventType, true)
		}
		if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
			p.logger.WithError(err).Error("Failed to mark event as published", "eventId", event.ID)
		}
	}

	p.mu.Lock()
	p.publishedCnt += published
	p.failedCnt += failed
	p.mu.Unlock()

	return published, failed
}

func (p *Publisher) publishEvent(ctx context.Context, event *OutboxEvent) error {
	cloudEvent, err := event.ToCloudEvent()
	if err != nil {
		return fmt.Errorf("failed to convert to CloudEvent: %w", err)
	}
	if err := p.producer.PublishEvent(ctx, event.Topic, cloudEvent); err != nil {
		return fmt.Errorf("failed to publish to Kafka: %w", err)
	}
	return nil
}

func (p *Publisher) cleanup(ctx context.Context) {
	if p.config.Retention <= 0 || time.Since(p.lastCleanup) < p.config.CleanupInterval {
		return
	}
	p.lastCleanup = time.Now()

	removed, err := p.repo.DeletePublished(ctx, time.Now().Add(-p.config.Retention))
	if err != nil {
		p.logger.WithError(err).Warn("Failed to purge published outbox events")
		return
	}
	if removed > 0 {
		p.logger.Info("Purged published outbox events", "removed", removed)
	}
}

// Stats returns publisher statistics
func (p *Publisher) Stats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]int{
		"published": p.publishedCnt,
		"failed":    p.failedCnt,
	}
}
