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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxAttempts bounds how often a transition is retried after a concurrent
// modification.
const MaxAttempts = 3

// TransitionResult is the outcome of an applied command. Warnings carry non-fatal
// problems, such as errs.AuditWriteDegradedError, that did not prevent the change
// from being committed. NoOp is set when nothing needed to change.
type TransitionResult struct {
	Order    *order.Order
	Warnings []error
	NoOp     bool
}

// ApplyTransitionCommandHandler is the workflow orchestrator: the single entry point
// through which every actor action mutates an order.
//
// For each attempt it loads the order inside a unit of work, validates every
// requested move and patched field against the post-patch context, mutates the
// aggregate, persists it with a version-conditioned update and appends the audit
// events in a savepoint of the same transaction. Denied attempts are audited in a
// transaction of their own. Version conflicts are retried up to MaxAttempts times
// with a fresh read. Notifications go out after commit.
//
// Example:
//
//	handler := NewApplyTransitionCommandHandler(uowFactory, notifier, metrics, logger, time.Now)
//	cmd, _ := NewMarkPaymentReceivedCommand(orderID, kernel.SystemActor())
//	tc, _ := cmd.Transition()
//	res, err := handler.Handle(ctx, tc)
//	if err != nil {
//	    switch errs.KindOf(err) { ... }
//	}
type ApplyTransitionCommandHandler struct {
	uowFactory UoWFactory
	validator  services.TransitionValidator
	audit      AuditLogWriter
	notifier   ports.NotificationDispatcher
	metrics    ports.WorkflowMetrics
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewApplyTransitionCommandHandler(
	uowFactory UoWFactory,
	notifier ports.NotificationDispatcher,
	metrics ports.WorkflowMetrics,
	logger *slog.Logger,
	now func() time.Time,
) ApplyTransitionCommandHandler {
	if now == nil {
		now = time.Now
	}
	return ApplyTransitionCommandHandler{
		uowFactory: uowFactory,
		validator:  services.NewTransitionValidator(),
		audit:      NewAuditLogWriter(logger, metrics),
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger.With("component", "WorkflowOrchestrator"),
		tracer:     otel.Tracer("orderflow/commands"),
		now:        now,
	}
}

// Handle applies cmd. Errors are classified with errs.KindOf.
func (h *ApplyTransitionCommandHandler) Handle(ctx context.Context, cmd ApplyTransitionCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	ctx, span := h.tracer.Start(ctx, "ApplyTransition", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("actor.role", cmd.Actor().Role().String()),
	))
	defer span.End()

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
		h.logger.WarnContext(ctx, "concurrent modification, retrying",
			"order_id", cmd.OrderID().String(), "attempt", attempt)
	}

	span.SetAttributes(attribute.Bool("transition.noop", res.NoOp))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TransitionResult{}, err
	}
	return res, nil
}

func (h *ApplyTransitionCommandHandler) attempt(ctx context.Context, cmd ApplyTransitionCommand) (TransitionResult, error) {
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

	patch := cmd.Patch()
	verdict := h.validator.Validate(services.TransitionCheck{
		CurrentOrder:     o.State(),
		ProposedOrder:    cmd.TargetState(),
		CurrentDelivery:  o.DeliveryState(),
		ProposedDelivery: cmd.TargetDelivery(),
		Actor:            cmd.Actor(),
		Context:          o.Context(patch, cmd.TargetState(), cmd.TargetDelivery()),
		PatchFields:      patch.Fields(),
	})
	if !verdict.Allowed {
		h.deny(ctx, o, cmd, verdict.Machine, verdict.Err)
		return TransitionResult{}, verdict.Err
	}

	now := h.now()
	before := o.Snapshot()
	if err = o.Transition(order.Change{
		TargetState:    cmd.TargetState(),
		TargetDelivery: cmd.TargetDelivery(),
		Patch:          patch,
		Actor:          cmd.Actor(),
	}, now); err != nil {
		if isRefusal(err) {
			h.deny(ctx, o, cmd, order.OrderMachine, err)
		}
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
	events := audit.NewChangeEvents(o.ID(), cmd.Actor(), audit.OutcomeTransition,
		before, o.Snapshot(), changes, "", cmd.Metadata(), now)
	if err = h.audit.AppendInTx(ctx, uow, o.ID(), events...); err != nil {
		warnings = append(warnings, err)
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	for _, e := range events {
		h.metrics.TransitionApplied(string(e.Machine), e.From, e.To)
	}
	h.logger.InfoContext(ctx, "order changed",
		"order_id", o.ID().String(),
		"actor_role", cmd.Actor().Role().String(),
		"state", o.State().String(),
		"delivery_state", o.DeliveryState().String(),
		"fields", changes.Fields,
	)
	dispatchAll(ctx, h.notifier, h.metrics, h.logger, Notifications(before, o))

	return TransitionResult{Order: o, Warnings: warnings}, nil
}

// deny records a refused attempt. Failures to do so are logged by the audit writer
// and do not change the error returned to the caller.
func (h *ApplyTransitionCommandHandler) deny(
	ctx context.Context,
	o *order.Order,
	cmd ApplyTransitionCommand,
	machine order.Machine,
	cause error,
) {
	h.metrics.TransitionDenied(string(errs.KindOf(cause)))
	h.logger.InfoContext(ctx, "transition denied",
		"order_id", o.ID().String(),
		"actor_role", cmd.Actor().Role().String(),
		"actor_id", cmd.Actor().IDString(),
		"error", cause,
	)

	from, to := o.State().String(), o.State().String()
	if cmd.TargetState() != nil {
		to = cmd.TargetState().String()
	}
	if machine == order.DeliveryMachine {
		from, to = o.DeliveryState().String(), o.DeliveryState().String()
		if cmd.TargetDelivery() != nil {
			to = cmd.TargetDelivery().String()
		}
	}
	event := audit.NewDeniedEvent(o.ID(), cmd.Actor(), machine, from, to, cause, cmd.Metadata(), h.now())
	_ = h.audit.AppendStandalone(ctx, h.uowFactory.Create(), o.ID(), event)
}

// isRefusal reports whether err is the aggregate turning the request down, as opposed
// to an infrastructure failure.
func isRefusal(err error) bool {
	switch errs.KindOf(err) {
	case errs.KindInvalidTransition, errs.KindPreconditionFailed, errs.KindInvalidInput, errs.KindUnauthorizedActor:
		return true
	default:
		return false
	}
}
