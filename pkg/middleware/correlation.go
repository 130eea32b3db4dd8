package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wms-platform/picker-performance-service/pkg/errors"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
)

// Context keys
const (
	ContextKeyRequestID     = "requestId"
	ContextKeyCorrelationID = "correlationId"
	ContextKeyTraceID       = "traceId"
)

// HTTP header names
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestID middleware generates or propagates request IDs
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// CorrelationID propagates the caller's correlation id, minting one when absent.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(ContextKeyCorrelationID, correlationID)
		c.Header(HeaderCorrelationID, correlationID)
		c.Request = c.Request.WithContext(logging.ContextWithCorrelationID(c.Request.Context(), correlationID))

		c.Next()
	}
}

// Logger middleware writes one structured line per request, skipping probes.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	skip := map[string]bool{"/health": true, "/ready": true, "/metrics": true}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}

		start := time.Now()
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latencyMs", latency.Milliseconds(),
			"clientIP", c.ClientIP(),
			"requestId", GetRequestID(c),
			"correlationId", GetCorrelationID(c),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", attrs...)
		case status >= 400:
			logger.Warn("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	}
}

// Recovery middleware turns panics into a 500 with the standard error body
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"requestId", GetRequestID(c),
				)

				AbortWithAppError(c, &errors.AppError{
					Code:       errors.CodeInternalError,
					Message:    "An unexpected error occurred",
					HTTPStatus: http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}

// GetRequestID extracts request ID from context
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID extracts correlation ID from context
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
