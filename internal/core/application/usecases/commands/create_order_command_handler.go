package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderCommandHandler drafts new orders on behalf of buyers. The order is
// persisted together with its creation audit event; a failed audit append is
// reported as a warning.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	audit      AuditLogWriter
	logger     *slog.Logger
	now        func() time.Time
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	metrics ports.WorkflowMetrics,
	logger *slog.Logger,
	now func() time.Time,
) CreateOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		audit:      NewAuditLogWriter(logger, metrics),
		logger:     logger.With("component", "CreateOrder"),
		now:        now,
	}
}

// Handle creates the order in DRAFT. Only buyers may create orders and the buyer
// becomes the order's owner.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	actor := cmd.Actor()
	if actor.Role() != kernel.RoleBuyer || actor.ID() == nil {
		return TransitionResult{}, errs.NewUnauthorizedActorError(
			actor.Role().String(), actor.IDString(), "create order", []string{kernel.RoleBuyer.String()})
	}

	now := h.now()
	o, err := order.NewOrder(cmd.OrderID(), *actor.ID(), cmd.Title(), cmd.Quantity(), cmd.DesignFileRef(), now)
	if err != nil {
		return TransitionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	var warnings []error
	if err = h.audit.AppendInTx(ctx, uow, o.ID(), audit.NewCreatedEvent(o, actor, now)); err != nil {
		warnings = append(warnings, err)
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	h.logger.InfoContext(ctx, "order created", "order_id", o.ID().String(), "buyer_id", actor.IDString())
	return TransitionResult{Order: o, Warnings: warnings}, nil
}
