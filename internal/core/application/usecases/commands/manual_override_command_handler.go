package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ManualOverrideCommandHandler applies manual overrides. Authorization and the
// reason are checked by the transition validator; the resulting audit events carry
// outcome manual_override and the reason. Refused overrides are audited as denied.
type ManualOverrideCommandHandler struct {
	uowFactory UoWFactory
	validator  services.TransitionValidator
	audit      AuditLogWriter
	metrics    ports.WorkflowMetrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewManualOverrideCommandHandler(
	uowFactory UoWFactory,
	metrics ports.WorkflowMetrics,
	logger *slog.Logger,
	now func() time.Time,
) ManualOverrideCommandHandler {
	if now == nil {
		now = time.Now
	}
	return ManualOverrideCommandHandler{
		uowFactory: uowFactory,
		validator:  services.NewTransitionValidator(),
		audit:      NewAuditLogWriter(logger, metrics),
		metrics:    metrics,
		logger:     logger.With("component", "ManualOverride"),
		now:        now,
	}
}

func (h *ManualOverrideCommandHandler) Handle(ctx context.Context, cmd ManualOverrideCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	var (
		res TransitionResult
		err error
	)
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		res, err = h.attempt(ctx, cmd)
		if errs.KindOf(err) != errs.KindConcurrentModification || attempt == MaxAttempts {
			break
		}
		h.metrics.ConcurrencyRetry()
		h.logger.WarnContext(ctx, "concurrent modification, retrying override",
			"order_id", cmd.OrderID().String(), "attempt", attempt)
	}
	return res, err
}

func (h *ManualOverrideCommandHandler) attempt(ctx context.Context, cmd ManualOverrideCommand) (TransitionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}

	if err = h.validator.AuthorizeOverride(cmd.Actor(), cmd.Reason()); err != nil {
		h.deny(ctx, o, cmd, err)
		return TransitionResult{}, err
	}

	now := h.now()
	before := o.Snapshot()
	if err = o.Override(cmd.TargetState(), cmd.TargetDelivery(), now); err != nil {
		return TransitionResult{}, err
	}

	changes := order.Diff(before, o.Snapshot())
	if changes.IsEmpty() {
		return TransitionResult{Order: o, NoOp: true}, nil
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	var warnings []error
	events := audit.NewChangeEvents(o.ID(), cmd.Actor(), audit.OutcomeManualOverride,
		before, o.Snapshot(), changes, cmd.Reason(), nil, now)
	if err = h.audit.AppendInTx(ctx, uow, o.ID(), events...); err != nil {
		warnings = append(warnings, err)
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	h.logger.WarnContext(ctx, "order overridden",
		"order_id", o.ID().String(),
		"actor_id", cmd.Actor().IDString(),
		"state", o.State().String(),
		"delivery_state", o.DeliveryState().String(),
		"reason", cmd.Reason(),
	)
	return TransitionResult{Order: o, Warnings: warnings}, nil
}

// deny audits a refused override against the machine it targeted.
func (h *ManualOverrideCommandHandler) deny(ctx context.Context, o *order.Order, cmd ManualOverrideCommand, cause error) {
	h.metrics.TransitionDenied(string(errs.KindOf(cause)))
	h.logger.WarnContext(ctx, "override denied",
		"order_id", o.ID().String(),
		"actor_role", cmd.Actor().Role().String(),
		"actor_id", cmd.Actor().IDString(),
		"error", cause,
	)

	machine, from, to := order.OrderMachine, o.State().String(), o.State().String()
	if t := cmd.TargetState(); t != nil {
		to = t.String()
	} else if d := cmd.TargetDelivery(); d != nil {
		machine, from, to = order.DeliveryMachine, o.DeliveryState().String(), d.String()
	}
	event := audit.NewDeniedEvent(o.ID(), cmd.Actor(), machine, from, to, cause, nil, h.now())
	_ = h.audit.AppendStandalone(ctx, h.uowFactory.Create(), o.ID(), event)
}
