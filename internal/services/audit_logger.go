package services

import (
	"context"
	"log/slog"
	"time"

	"finance-ledger/internal/secrets"

	"github.com/google/uuid"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// WithTraceID returns a context carrying the request trace ID for audit records
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace ID stored by WithTraceID
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogTransactionCategorized(ctx context.Context, transactionID uuid.UUID, categoryID *uuid.UUID, source string) {
	attrs := []slog.Attr{
		slog.String("event_type", "transaction_categorized"),
		slog.String("transaction_id", transactionID.String()),
		slog.String("source", source),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	}
	if categoryID != nil {
		attrs = append(attrs, slog.String("category_id", categoryID.String()))
	}

	al.logger.LogAttrs(ctx, slog.LevelInfo, "transaction categorized", attrs...)
}

func (al *AuditLogger) LogReviewDecision(ctx context.Context, transactionID uuid.UUID, action string, oldStatus, newStatus string) {
	al.logger.InfoContext(ctx, "review decision",
		slog.String("event_type", "review_decision"),
		slog.String("transaction_id", transactionID.String()),
		slog.String("action", action),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	)
}

func (al *AuditLogger) LogRuleSkipped(ctx context.Context, ruleID uuid.UUID, pattern string, err error) {
	al.logger.WarnContext(ctx, "categorization rule skipped",
		slog.String("event_type", "rule_skipped"),
		slog.String("rule_id", ruleID.String()),
		slog.String("pattern", pattern),
		slog.String("error", errorString(err)),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	)
}

func (al *AuditLogger) LogCategoryDeleted(ctx context.Context, categoryID uuid.UUID, name string) {
	al.logger.InfoContext(ctx, "category deleted",
		slog.String("event_type", "category_deleted"),
		slog.String("category_id", categoryID.String()),
		slog.String("name", name),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	)
}

// LogCredentialChanged never receives the credential value
func (al *AuditLogger) LogCredentialChanged(ctx context.Context, credential secrets.CredentialType, action string) {
	al.logger.InfoContext(ctx, "credential changed",
		slog.String("event_type", "credential_changed"),
		slog.String("credential_type", credential.String()),
		slog.String("action", action),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("trace_id", TraceIDFromContext(ctx)),
	)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
