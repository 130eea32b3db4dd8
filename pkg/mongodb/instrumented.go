package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
)

// InstrumentedClient adds spans, metrics and query logs around repository calls.
type InstrumentedClient struct {
	*Client
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewInstrumentedClient creates a new instrumented MongoDB client. m and logger may be nil.
func NewInstrumentedClient(client *Client, m *metrics.Metrics, logger *logging.Logger) *InstrumentedClient {
	return &InstrumentedClient{
		Client:  client,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("mongodb"),
	}
}

// Observe runs fn as one traced, measured operation on collection.
func (c *InstrumentedClient) Observe(ctx context.Context, collection, operation string, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "mongodb."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBNameKey.String(c.config.Database),
			semconv.DBOperationKey.String(operation),
			attribute.String("db.collection", collection),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	failed := err != nil && !errors.Is(err, mongo.ErrNoDocuments)

	var logErr error
	if failed {
		logErr = err
	}
	if c.metrics != nil {
		c.metrics.RecordMongoDBOperation(collection, operation, !failed, duration)
	}
	if c.logger != nil {
		c.logger.DatabaseQuery(ctx, collection, operation, duration, logErr)
	}

	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// HealthCheck pings the primary inside a span
func (c *InstrumentedClient) HealthCheck(ctx context.Context) error {
	return c.Observe(ctx, "admin", "ping", c.Client.HealthCheck)
}
