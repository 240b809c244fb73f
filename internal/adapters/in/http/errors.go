package http

import (
	"errors"
	"net/http"

	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.ErrorKind) int {
	switch kind {
	case errs.KindNone:
		return http.StatusOK
	case errs.KindInvalidTransition, errs.KindConcurrentModification:
		return http.StatusConflict
	case errs.KindUnauthorizedActor:
		return http.StatusForbidden
	case errs.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	kind := errs.KindOf(err)
	status := StatusFor(kind)
	message := err.Error()
	if status == http.StatusInternalServerError {
		ctx.Logger().Error(err)
		message = "internal error"
	}
	return ctx.JSON(status, servers.Error{Code: status, Kind: string(kind), Message: message})
}

func writeBadBody(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{
		Code:    http.StatusBadRequest,
		Kind:    string(errs.KindInvalidInput),
		Message: "Invalid request body",
	})
}
