package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/picker-performance-service/pkg/errors"
)

// APIErrorResponse represents a standardized error response
type APIErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path"`
}

func newErrorResponse(c *gin.Context, appErr *errors.AppError) APIErrorResponse {
	return APIErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	}
}

// ErrorHandler renders errors attached with c.Error once the handler chain returns.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := errors.MapDomainError(c.Errors.Last().Err)
		logError(logger, c, appErr)
		c.JSON(appErr.HTTPStatus, newErrorResponse(c, appErr))
	}
}

// ErrorResponder provides helper methods for sending error responses
type ErrorResponder struct {
	ctx    *gin.Context
	logger *slog.Logger
}

// NewErrorResponder creates a new ErrorResponder
func NewErrorResponder(ctx *gin.Context, logger *slog.Logger) *ErrorResponder {
	return &ErrorResponder{ctx: ctx, logger: logger}
}

// RespondWithError sends an error response
func (r *ErrorResponder) RespondWithError(err error) {
	r.RespondWithAppError(errors.MapDomainError(err))
}

// RespondWithAppError sends an AppError response
func (r *ErrorResponder) RespondWithAppError(appErr *errors.AppError) {
	logError(r.logger, r.ctx, appErr)
	r.ctx.JSON(appErr.HTTPStatus, newErrorResponse(r.ctx, appErr))
}

// RespondBadRequest sends a 400 response
func (r *ErrorResponder) RespondBadRequest(message string) {
	r.RespondWithAppError(errors.ErrBadRequest(message))
}

// RespondInternalError sends a 500 response
func (r *ErrorResponder) RespondInternalError(err error) {
	r.RespondWithAppError(errors.ErrInternal("").Wrap(err))
}

func logError(logger *slog.Logger, c *gin.Context, appErr *errors.AppError) {
	level := slog.LevelError
	if appErr.HTTPStatus < http.StatusInternalServerError {
		level = slog.LevelWarn
	}

	attrs := []any{
		"code", appErr.Code,
		"message", appErr.Message,
		"status", appErr.HTTPStatus,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"requestId", GetRequestID(c),
	}
	if appErr.Err != nil {
		attrs = append(attrs, "error", appErr.Err.Error())
	}
	if appErr.Details != nil {
		attrs = append(attrs, "details", appErr.Details)
	}

	logger.Log(c.Request.Context(), level, "API error", attrs...)
}

// AbortWithAppError aborts the request with an AppError
func AbortWithAppError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, newErrorResponse(c, appErr))
}
