package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

const auditSavepoint = "audit_append"

// AuditLogWriter appends audit events. A failed append never undoes the business
// change it describes: it is logged, counted and returned as an
// errs.AuditWriteDegradedError for the caller to surface as a warning.
type AuditLogWriter struct {
	logger  *slog.Logger
	metrics ports.WorkflowMetrics
}

func NewAuditLogWriter(logger *slog.Logger, metrics ports.WorkflowMetrics) AuditLogWriter {
	return AuditLogWriter{
		logger:  logger.With("component", "AuditLogWriter"),
		metrics: metrics,
	}
}

// AppendInTx writes events inside the caller's transaction, isolated by a savepoint
// so that the transaction can still commit when the append fails.
func (w AuditLogWriter) AppendInTx(ctx context.Context, uow AuditUoW, orderID kernel.UUID, events ...audit.Event) error {
	err := uow.Savepoint(ctx, auditSavepoint, func() error {
		if err := validateEvents(events); err != nil {
			return err
		}
		return uow.AuditLogRepository().Append(ctx, events...)
	})
	if err != nil {
		return w.degraded(ctx, orderID, err)
	}
	return nil
}

// AppendStandalone writes events in their own transaction. Denied attempts are
// recorded this way because the transaction that evaluated them is rolled back.
func (w AuditLogWriter) AppendStandalone(ctx context.Context, uow AuditUoW, orderID kernel.UUID, events ...audit.Event) error {
	if err := uow.Begin(ctx); err != nil {
		return w.degraded(ctx, orderID, err)
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := validateEvents(events); err != nil {
		return w.degraded(ctx, orderID, err)
	}
	if err := uow.AuditLogRepository().Append(ctx, events...); err != nil {
		return w.degraded(ctx, orderID, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return w.degraded(ctx, orderID, err)
	}
	return nil
}

func (w AuditLogWriter) degraded(ctx context.Context, orderID kernel.UUID, cause error) error {
	w.logger.ErrorContext(ctx, "audit append failed", "order_id", orderID.String(), "error", cause)
	w.metrics.AuditWriteDegraded()
	return errs.NewAuditWriteDegradedError(orderID.String(), cause)
}

func validateEvents(events []audit.Event) error {
	problems := make([]error, 0, len(events))
	for _, e := range events {
		problems = append(problems, e.Validate())
	}
	return errors.Join(problems...)
}
