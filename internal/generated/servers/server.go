package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/v1/orders)
	ListOpenOrders(ctx echo.Context, params ActorParams) error
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context, params ActorParams) error
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (GET /api/v1/orders/{orderId}/audit)
	GetAuditTrail(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/submit)
	SubmitOrder(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/review)
	ReviewOrder(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/assign)
	AssignManufacturer(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/approve)
	ApproveOrder(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/payment-received)
	MarkPaymentReceived(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/qc/{stage}/upload)
	UploadQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/qc/{stage}/approve)
	ApproveQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/qc/{stage}/reject)
	RejectQC(ctx echo.Context, orderId openapi_types.UUID, stage string, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/packed)
	MarkPacked(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/pickup)
	SchedulePickup(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/lock-specs)
	LockSpecs(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/revision)
	RequestRevision(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/transition)
	ApplyTransition(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (POST /api/v1/orders/{orderId}/override)
	OverrideOrder(ctx echo.Context, orderId openapi_types.UUID, params ActorParams) error
	// (GET /api/v1/reports/delays)
	GetDelayReport(ctx echo.Context, params GetDelayReportParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindActor(ctx echo.Context) (ActorParams, error) {
	var params ActorParams
	headers := ctx.Request().Header

	values, found := headers[http.CanonicalHeaderKey("X-Actor-Role")]
	if !found {
		return params, echo.NewHTTPError(http.StatusBadRequest, "Header parameter X-Actor-Role is required, but not found")
	}
	if len(values) != 1 {
		return params, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Expected one value for X-Actor-Role, got %d", len(values)))
	}
	err := runtime.BindStyledParameterWithOptions("simple", "X-Actor-Role", values[0], &params.XActorRole,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
	if err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-Actor-Role: %s", err))
	}

	if values, found = headers[http.CanonicalHeaderKey("X-Actor-Id")]; found {
		if len(values) != 1 {
			return params, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Expected one value for X-Actor-Id, got %d", len(values)))
		}
		var id openapi_types.UUID
		err = runtime.BindStyledParameterWithOptions("simple", "X-Actor-Id", values[0], &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-Actor-Id: %s", err))
		}
		params.XActorId = &id
	}
	return params, nil
}

func bindOrderID(ctx echo.Context) (openapi_types.UUID, error) {
	var orderId openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return orderId, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderId, nil
}

func bindStage(ctx echo.Context) (string, error) {
	var stage string
	err := runtime.BindStyledParameterWithOptions("simple", "stage", ctx.Param("stage"), &stage,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return stage, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter stage: %s", err))
	}
	return stage, nil
}

func (w *ServerInterfaceWrapper) withActor(fn func(echo.Context, ActorParams) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		params, err := bindActor(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, params)
	}
}

func (w *ServerInterfaceWrapper) withOrder(
	fn func(echo.Context, openapi_types.UUID, ActorParams) error,
) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		orderId, err := bindOrderID(ctx)
		if err != nil {
			return err
		}
		params, err := bindActor(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, orderId, params)
	}
}

func (w *ServerInterfaceWrapper) withStage(
	fn func(echo.Context, openapi_types.UUID, string, ActorParams) error,
) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		orderId, err := bindOrderID(ctx)
		if err != nil {
			return err
		}
		stage, err := bindStage(ctx)
		if err != nil {
			return err
		}
		params, err := bindActor(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, orderId, stage, params)
	}
}

// GetDelayReport converts echo context to params.
func (w *ServerInterfaceWrapper) GetDelayReport(ctx echo.Context) error {
	actor, err := bindActor(ctx)
	if err != nil {
		return err
	}
	params := GetDelayReportParams{ActorParams: actor}
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.Handler.GetDelayReport(ctx, params)
}

// EchoRouter is the subset of echo routing used by RegisterHandlers. Both
// *echo.Echo and *echo.Group satisfy it.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the routes under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/api/v1/orders", w.withActor(si.ListOpenOrders))
	router.POST(baseURL+"/api/v1/orders", w.withActor(si.CreateOrder))
	router.GET(baseURL+"/api/v1/orders/:orderId", w.withOrder(si.GetOrder))
	router.GET(baseURL+"/api/v1/orders/:orderId/audit", w.withOrder(si.GetAuditTrail))
	router.POST(baseURL+"/api/v1/orders/:orderId/submit", w.withOrder(si.SubmitOrder))
	router.POST(baseURL+"/api/v1/orders/:orderId/review", w.withOrder(si.ReviewOrder))
	router.POST(baseURL+"/api/v1/orders/:orderId/assign", w.withOrder(si.AssignManufacturer))
	router.POST(baseURL+"/api/v1/orders/:orderId/approve", w.withOrder(si.ApproveOrder))
	router.POST(baseURL+"/api/v1/orders/:orderId/payment-received", w.withOrder(si.MarkPaymentReceived))
	router.POST(baseURL+"/api/v1/orders/:orderId/qc/:stage/upload", w.withStage(si.UploadQC))
	router.POST(baseURL+"/api/v1/orders/:orderId/qc/:stage/approve", w.withStage(si.ApproveQC))
	router.POST(baseURL+"/api/v1/orders/:orderId/qc/:stage/reject", w.withStage(si.RejectQC))
	router.POST(baseURL+"/api/v1/orders/:orderId/packed", w.withOrder(si.MarkPacked))
	router.POST(baseURL+"/api/v1/orders/:orderId/pickup", w.withOrder(si.SchedulePickup))
	router.POST(baseURL+"/api/v1/orders/:orderId/lock-specs", w.withOrder(si.LockSpecs))
	router.POST(baseURL+"/api/v1/orders/:orderId/revision", w.withOrder(si.RequestRevision))
	router.POST(baseURL+"/api/v1/orders/:orderId/transition", w.withOrder(si.ApplyTransition))
	router.POST(baseURL+"/api/v1/orders/:orderId/override", w.withOrder(si.OverrideOrder))
	router.GET(baseURL+"/api/v1/reports/delays", w.GetDelayReport)
}
