// Package http is the inbound HTTP adapter. It implements servers.ServerInterface by
// turning requests into commands and queries. The acting role and id come from the
// X-Actor-Role and X-Actor-Id headers; no identity lookup happens here.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type (
	TransitionApplier interface {
		Handle(ctx context.Context, cmd commands.ApplyTransitionCommand) (commands.TransitionResult, error)
	}
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.TransitionResult, error)
	}
	OrderOverrider interface {
		Handle(ctx context.Context, cmd commands.ManualOverrideCommand) (commands.TransitionResult, error)
	}
	OpenOrdersLister interface {
		Handle(ctx context.Context, query queries.GetOpenOrdersQuery) ([]queries.GetOpenOrdersQueryResponse, error)
	}
	OrderViewer interface {
		Handle(ctx context.Context, query queries.GetOrderViewQuery) (services.OrderView, error)
	}
	AuditTrailReader interface {
		Handle(ctx context.Context, query queries.GetAuditTrailQuery) (queries.GetAuditTrailQueryResponse, error)
	}
	DelayReporter interface {
		Handle(ctx context.Context, query queries.GetDelayReportQuery) (queries.GetDelayReportQueryResponse, error)
	}
)

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	Transition  TransitionApplier
	CreateOrder OrderCreator
	Override    OrderOverrider
	OpenOrders  OpenOrdersLister
	OrderView   OrderViewer
	AuditTrail  AuditTrailReader
	DelayReport DelayReporter
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	h         Handlers
	projector services.OrderProjector
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(h Handlers, now func() time.Time) *Server {
	return &Server{h: h, projector: services.NewOrderProjector(now)}
}

// ListOpenOrders handles GET /api/v1/orders.
func (s *Server) ListOpenOrders(ctx echo.Context, params servers.ActorParams) error {
	actor, err := actorFrom(params)
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetOpenOrdersQuery(actor)
	if err != nil {
		return writeError(ctx, err)
	}

	orders, err := s.h.OpenOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]servers.OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = servers.OrderSummary{
			Id:             o.ID.Bytes(),
			BuyerId:        o.BuyerID.Bytes(),
			ManufacturerId: uuidPtr(o.ManufacturerID),
			Title:          o.Title,
			State:          o.State.String(),
			DeliveryState:  o.DeliveryState.String(),
			UpdatedAt:      o.UpdatedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateOrder handles POST /api/v1/orders - creates a DRAFT order owned by the buyer.
func (s *Server) CreateOrder(ctx echo.Context, params servers.ActorParams) error {
	var body servers.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	actor, err := actorFrom(params)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), actor, body.Title, body.Quantity, deref(body.DesignFileRef))
	if err != nil {
		return writeError(ctx, err)
	}
	res, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, s.result(res, actor.Role()))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	id, actor, err := target(orderId, params)
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetOrderViewQuery(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.h.OrderView.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrderView(view))
}

// GetAuditTrail handles GET /api/v1/orders/{orderId}/audit.
func (s *Server) GetAuditTrail(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	id, actor, err := target(orderId, params)
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetAuditTrailQuery(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	trail, err := s.h.AuditTrail.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toAuditTrail(trail))
}

func (s *Server) SubmitOrder(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.SubmitOrder
	if err := bindOptional(ctx, &body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewSubmitOrderCommand(id, actor, deref(body.DesignFileRef))
	})
}

func (s *Server) ReviewOrder(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewReviewOrderCommand(id, actor)
	})
}

func (s *Server) AssignManufacturer(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.AssignManufacturer
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		manufacturerID, err := kernel.UUIDFromBytes(body.ManufacturerId[:])
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("manufacturer id", err)
		}
		return commands.NewAssignManufacturerCommand(id, actor, manufacturerID)
	})
}

func (s *Server) ApproveOrder(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.ApproveOrder
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewApproveOrderCommand(id, actor, body.PaymentLink)
	})
}

// MarkPaymentReceived handles the payment webhook. The audit entry records its source.
func (s *Server) MarkPaymentReceived(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		cmd, err := commands.NewMarkPaymentReceivedCommand(id, actor)
		if err != nil {
			return nil, err
		}
		return withMetadata{cmd, "source", "payment_webhook"}, nil
	})
}

func (s *Server) UploadQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params servers.ActorParams) error {
	var body servers.UploadQC
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		qcStage, err := order.ParseQCStage(stage)
		if err != nil {
			return nil, err
		}
		return commands.NewUploadQCCommand(id, actor, qcStage, body.VideoRef)
	})
}

func (s *Server) ApproveQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params servers.ActorParams) error {
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		qcStage, err := order.ParseQCStage(stage)
		if err != nil {
			return nil, err
		}
		return commands.NewApproveQCCommand(id, actor, qcStage)
	})
}

func (s *Server) RejectQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params servers.ActorParams) error {
	var body servers.RejectQC
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		qcStage, err := order.ParseQCStage(stage)
		if err != nil {
			return nil, err
		}
		var feedback *order.QCFeedback
		if body.Feedback != nil {
			feedback = &order.QCFeedback{
				DefectType:  body.Feedback.DefectType,
				Severity:    body.Feedback.Severity,
				Location:    body.Feedback.Location,
				RequiredFix: body.Feedback.RequiredFix,
			}
		}
		return commands.NewRejectQCCommand(id, actor, qcStage, body.Reason, feedback)
	})
}

func (s *Server) MarkPacked(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.MarkPacked
	if err := bindOptional(ctx, &body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewMarkPackedCommand(id, actor, deref(body.PackagingVideoRef))
	})
}

func (s *Server) SchedulePickup(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.SchedulePickup
	if err := bindOptional(ctx, &body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewSchedulePickupCommand(id, actor, deref(body.CourierName), deref(body.TrackingId))
	})
}

func (s *Server) LockSpecs(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewLockSpecsCommand(id, actor)
	})
}

func (s *Server) RequestRevision(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.RequestRevision
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		return commands.NewRequestRevisionCommand(id, actor, body.Notes)
	})
}

// ApplyTransition handles the moves without a dedicated endpoint: starting sample
// production, unlocking and starting bulk, dispatch, delivery and completion.
func (s *Server) ApplyTransition(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.Transition
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	return s.apply(ctx, orderId, params, func(id kernel.UUID, actor kernel.Actor) (transitioner, error) {
		state, delivery, err := parseTargets(body.State, body.DeliveryState)
		if err != nil {
			return nil, err
		}
		cmd, err := commands.NewApplyTransitionCommand(id, actor, state, delivery, order.Patch{})
		if err != nil {
			return nil, err
		}
		return plain{cmd}, nil
	})
}

// OverrideOrder handles POST /api/v1/orders/{orderId}/override.
func (s *Server) OverrideOrder(ctx echo.Context, orderId openapi_types.UUID, params servers.ActorParams) error {
	var body servers.Override
	if err := ctx.Bind(&body); err != nil {
		return writeBadBody(ctx)
	}
	id, actor, err := target(orderId, params)
	if err != nil {
		return writeError(ctx, err)
	}
	state, delivery, err := parseTargets(body.State, body.DeliveryState)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewManualOverrideCommand(id, actor, state, delivery, body.Reason)
	if err != nil {
		return writeError(ctx, err)
	}
	res, err := s.h.Override.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.result(res, actor.Role()))
}

// GetDelayReport handles GET /api/v1/reports/delays. Operations staff only.
func (s *Server) GetDelayReport(ctx echo.Context, params servers.GetDelayReportParams) error {
	actor, err := actorFrom(params.ActorParams)
	if err != nil {
		return writeError(ctx, err)
	}
	if r := actor.Role(); r != kernel.RoleAdmin && r != kernel.RoleSystem {
		return writeError(ctx, errs.NewUnauthorizedActorError(r.String(), actor.IDString(), "read delay report",
			kernel.RoleNames([]kernel.Role{kernel.RoleAdmin, kernel.RoleSystem})))
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	query, err := queries.NewGetDelayReportQuery(limit)
	if err != nil {
		return writeError(ctx, err)
	}
	report, err := s.h.DelayReport.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toDelayReport(report))
}

// transitioner is implemented by every lifecycle command.
type transitioner interface {
	Transition() (commands.ApplyTransitionCommand, error)
}

type plain struct{ cmd commands.ApplyTransitionCommand }

func (p plain) Transition() (commands.ApplyTransitionCommand, error) {
	return p.cmd, nil
}

type withMetadata struct {
	inner      transitioner
	key, value string
}

func (w withMetadata) Transition() (commands.ApplyTransitionCommand, error) {
	cmd, err := w.inner.Transition()
	if err != nil {
		return commands.ApplyTransitionCommand{}, err
	}
	return cmd.WithMetadata(w.key, w.value), nil
}

func (s *Server) apply(
	ctx echo.Context,
	orderId openapi_types.UUID,
	params servers.ActorParams,
	build func(kernel.UUID, kernel.Actor) (transitioner, error),
) error {
	id, actor, err := target(orderId, params)
	if err != nil {
		return writeError(ctx, err)
	}
	t, err := build(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := t.Transition()
	if err != nil {
		return writeError(ctx, err)
	}

	res, err := s.h.Transition.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.result(res, actor.Role()))
}

func (s *Server) result(res commands.TransitionResult, role kernel.Role) servers.TransitionResult {
	out := servers.TransitionResult{NoOp: res.NoOp}
	if res.Order != nil {
		v := toOrderView(s.projector.View(res.Order, role))
		out.Order = &v
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}

func actorFrom(params servers.ActorParams) (kernel.Actor, error) {
	role, err := kernel.ParseRole(params.XActorRole)
	if err != nil {
		return kernel.Actor{}, err
	}
	var id *kernel.UUID
	if params.XActorId != nil {
		parsed, err := kernel.UUIDFromBytes(params.XActorId[:])
		if err != nil {
			return kernel.Actor{}, errs.NewValueIsInvalidErrorWithCause("actor id", err)
		}
		id = &parsed
	}
	return kernel.NewActor(role, id)
}

func target(orderId openapi_types.UUID, params servers.ActorParams) (kernel.UUID, kernel.Actor, error) {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	actor, err := actorFrom(params)
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, err
	}
	return id, actor, nil
}

func parseTargets(state, delivery *string) (*order.State, *order.DeliveryState, error) {
	var (
		s *order.State
		d *order.DeliveryState
	)
	if state != nil && strings.TrimSpace(*state) != "" {
		parsed, err := order.ParseState(*state)
		if err != nil {
			return nil, nil, err
		}
		s = &parsed
	}
	if delivery != nil && strings.TrimSpace(*delivery) != "" {
		parsed, err := order.ParseDeliveryState(*delivery)
		if err != nil {
			return nil, nil, err
		}
		d = &parsed
	}
	return s, d, nil
}

// bindOptional binds a request body that may be absent.
func bindOptional(ctx echo.Context, dst any) error {
	if ctx.Request().ContentLength == 0 {
		return nil
	}
	return ctx.Bind(dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
