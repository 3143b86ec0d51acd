// Package errors defines the review pipeline's error taxonomy. Signal
// adapters never let errors cross their boundary, so most of these types
// surface either in pipeline-level ChallengeResult.Errors entries or in
// HTTP responses from the dashboard API.
package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory classifies a failure for handling and logging.
type ErrorCategory string

const (
	// CategoryMissingInput covers absent test files, source files, and
	// credentials. Always resolves to a zero-scored signal, never a crash.
	CategoryMissingInput ErrorCategory = "missing_input"
	// CategoryTransientTool covers port conflicts, process timeouts, and
	// network failures reaching external tools.
	CategoryTransientTool ErrorCategory = "transient_tool"
	// CategoryMalformedOutput covers unparseable tool or model output
	// after heuristic fallbacks were exhausted.
	CategoryMalformedOutput ErrorCategory = "malformed_output"
	// CategoryPipeline covers failures of the review loop itself.
	CategoryPipeline   ErrorCategory = "pipeline"
	CategoryValidation ErrorCategory = "validation"
	CategoryInternal   ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with category and HTTP context.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	// Hint is a human-actionable remediation line surfaced to the console
	// instead of a raw stack trace ("install browser binaries", "set the
	// API credential").
	Hint string `json:"hint,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Category)), e.ErrBuilder.Msg)
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from an errbuilder with category context.
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewMissingInputError records an absent required input.
func NewMissingInputError(message string, hint string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	appErr := NewAppError(builder, CategoryMissingInput, http.StatusUnprocessableEntity)
	appErr.Hint = hint
	return appErr
}

// NewTransientToolError records a retryable external-tool failure.
func NewTransientToolError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryTransientTool, http.StatusBadGateway)
}

// NewTimeoutError records an external process exceeding its wall-clock
// budget. Converted to a normal error-carrying SignalResult by the adapter.
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryTransientTool, http.StatusGatewayTimeout)
}

// NewMalformedOutputError records output that defeated both the structured
// parser and the heuristic fallback.
func NewMalformedOutputError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryMalformedOutput, http.StatusBadGateway)
}

// NewPipelineError records a failure of the review loop itself; the loop
// appends it to ChallengeResult.Errors and continues.
func NewPipelineError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryPipeline, http.StatusInternalServerError)
}

// NewValidationError records a malformed API request.
func NewValidationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewInternalError records an unexpected failure.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError, classifying common failure
// shapes by message.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError("operation timed out", err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "not found"):
		return NewMissingInputError(msg, "")
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return NewTimeoutError("operation timed out", err)
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return NewTransientToolError("network connection failed", err)
	}
	return NewInternalError("an unexpected error occurred", err)
}

// ErrorHandler is gin middleware translating accumulated handler errors
// into structured JSON responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			appErr := ToAppError(c.Errors.Last().Err)
			LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, errorBody(appErr))
		}
	}
}

// RecoveryHandler converts handler panics into structured 500 responses.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		appErr := NewInternalError(fmt.Sprintf("panic recovered: %v", err), fmt.Errorf("%v", err))
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, errorBody(appErr))
	})
}

// errorBody is the wire shape of an API error.
func errorBody(err *AppError) gin.H {
	body := gin.H{
		"error":     err.ErrBuilder.Msg,
		"category":  err.Category,
		"timestamp": err.Timestamp.Format(time.RFC3339),
	}
	if err.Hint != "" {
		body["hint"] = err.Hint
	}
	return body
}

// LogError logs an error with request context at a level matching its
// category. Expected failure modes (missing inputs, transient tools) log
// below error level so they do not page anyone.
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
	)

	switch err.Category {
	case CategoryValidation, CategoryMissingInput:
		logEntry.Warn(err.ErrBuilder.Msg)
	case CategoryTransientTool, CategoryMalformedOutput:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Info(err.ErrBuilder.Msg, "cause", cause)
		} else {
			logEntry.Info(err.ErrBuilder.Msg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(err.ErrBuilder.Msg, "cause", cause)
		} else {
			logEntry.Error(err.ErrBuilder.Msg)
		}
	}
}

// WrapError wraps an error with formatted context.
func WrapError(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(message, args...), err)
}
