package reporting

import (
	"context"
	"log/slog"
	"os"

	"github.com/rollbar/rollbar-go"

	"github.com/SAP-F-2025/learning-service/internal/config"
)

// ErrorReporter receives failures that must not interrupt the caller,
// such as a completion email that could not be delivered.
type ErrorReporter interface {
	Report(ctx context.Context, err error, fields map[string]interface{})
}

// SlogReporter writes reported errors to the structured log
type SlogReporter struct {
	logger *slog.Logger
}

func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Report(ctx context.Context, err error, fields map[string]interface{}) {
	if err == nil {
		return
	}
	args := make([]any, 0, len(fields)*2+2)
	args = append(args, "error", err)
	for k, v := range fields {
		args = append(args, k, v)
	}
	r.logger.ErrorContext(ctx, "Reported error", args...)
}

// RollbarReporter forwards reported errors to Rollbar and mirrors them to the log
type RollbarReporter struct {
	fallback *SlogReporter
}

func NewRollbarReporter(cfg *config.Config, logger *slog.Logger) *RollbarReporter {
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.Environment)
	rollbar.SetCodeVersion(cfg.BuildVersion)
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}
	rollbar.SetEnabled(cfg.RollbarToken != "")
	return &RollbarReporter{fallback: NewSlogReporter(logger)}
}

// expected args for rollbar: error, map[string]interface{}
func (r *RollbarReporter) Report(ctx context.Context, err error, fields map[string]interface{}) {
	if err == nil {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	rollbar.Error(err, fields)
	r.fallback.Report(ctx, err, fields)
}

// Close blocks until queued items are sent
func (r *RollbarReporter) Close() {
	rollbar.Wait()
}

// NewReporter picks Rollbar when a token is configured, otherwise the log
func NewReporter(cfg *config.Config, logger *slog.Logger) ErrorReporter {
	if cfg.RollbarToken != "" {
		return NewRollbarReporter(cfg, logger)
	}
	return NewSlogReporter(logger)
}
