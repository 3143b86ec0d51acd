package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with review-pipeline helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON slog logger with RFC3339 timestamps.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// SignalLogger narrates one signal's outcome for a challenge. On failure it
// logs a short diagnostic line plus a remediation hint where one is known,
// never a raw stack trace.
func (l *Logger) SignalLogger(challengeID, signal string, score float64, passed bool, errMsg, hint string) {
	if errMsg == "" {
		l.Info("Signal completed",
			"challenge", challengeID,
			"signal", signal,
			"score", score,
			"passed", passed,
		)
		return
	}
	attrs := []any{
		"challenge", challengeID,
		"signal", signal,
		"score", score,
		"reason", errMsg,
	}
	if hint != "" {
		attrs = append(attrs, "hint", hint)
	}
	l.Warn("Signal unavailable", attrs...)
}

// ChallengeLogger logs the final outcome of one challenge review.
func (l *Logger) ChallengeLogger(challengeID string, totalScore float64, passed bool, duration time.Duration) {
	l.Info("Challenge reviewed",
		"challenge", challengeID,
		"total_score", totalScore,
		"passed", passed,
		"duration_ms", duration.Milliseconds(),
	)
}

// CourseLogger logs a course-level aggregation outcome.
func (l *Logger) CourseLogger(courseID string, averageScore, completion float64, badge string) {
	l.Info("Course aggregated",
		"course", courseID,
		"average_score", averageScore,
		"completion_pct", completion,
		"badge", badge,
	)
}

// ExternalToolLogger logs an external tool invocation.
func (l *Logger) ExternalToolLogger(tool string, args []string, exitCode int, duration time.Duration) {
	l.Debug("External tool run",
		"tool", tool,
		"args", args,
		"exit_code", exitCode,
		"duration_ms", duration.Milliseconds(),
	)
}
