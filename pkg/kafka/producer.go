package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
)

// EventPublisher publishes CloudEvents to a topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error
}

// Producer handles publishing messages to Kafka topics, one writer per topic.
type Producer struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(p.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              p.config.BatchSize,
		BatchTimeout:           p.config.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(p.config.RequiredAcks),
		WriteTimeout:           p.config.WriteTimeout,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: p.config.ClientID},
	}
	p.writers[topic] = writer
	return writer
}

// BuildMessage encodes event as a binary-mode CloudEvents Kafka message keyed by subject.
func BuildMessage(event *cloudevents.WMSCloudEvent, extra map[string]string) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
			{Key: "ce-type", Value: []byte(event.Type)},
			{Key: "ce-source", Value: []byte(event.Source)},
			{Key: "ce-id", Value: []byte(event.ID)},
			{Key: "ce-time", Value: []byte(event.Time.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte(event.DataContentType)},
		},
		Time: event.Time,
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-wmscorrelationid", Value: []byte(event.CorrelationID)})
	}
	for k, v := range extra {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-" + k, Value: []byte(v)})
	}
	return msg, nil
}

// PublishEvent publishes a CloudEvent to the specified topic
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	return p.publish(ctx, topic, event, nil)
}

func (p *Producer) publish(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent, extra map[string]string) error {
	msg, err := BuildMessage(event, extra)
	if err != nil {
		return err
	}
	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
