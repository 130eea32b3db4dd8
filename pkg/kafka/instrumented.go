package kafka

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
)

// InstrumentedProducer wraps a Producer with metrics, tracing and logging.
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewInstrumentedProducer creates a new instrumented producer
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger.WithComponent("kafka-producer"),
		tracer:   otel.Tracer("kafka-producer"),
	}
}

// PublishEvent publishes event inside a producer span and propagates the trace context as headers.
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "kafka.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationNameKey.String(topic),
			semconv.MessagingOperationKey.String("publish"),
			attribute.String("messaging.kafka.event_type", event.Type),
			attribute.String("messaging.message_id", event.ID),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	err := p.producer.publish(ctx, topic, event, carrier)
	duration := time.Since(start)

	p.metrics.RecordKafkaPublish(topic, event.Type, err == nil, duration)
	p.logger.KafkaPublish(ctx, topic, event.Type, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}
