package errs

import "errors"

// ErrorKind is the caller-facing classification of a workflow outcome.
type ErrorKind string

const (
	KindNone                   ErrorKind = ""
	KindInvalidTransition      ErrorKind = "InvalidTransition"
	KindUnauthorizedActor      ErrorKind = "UnauthorizedActor"
	KindPreconditionFailed     ErrorKind = "PreconditionFailed"
	KindNotFound               ErrorKind = "NotFound"
	KindConcurrentModification ErrorKind = "ConcurrentModification"
	KindAuditWriteDegraded     ErrorKind = "AuditWriteDegraded"
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindFatal                  ErrorKind = "Fatal"
)

// KindOf classifies err. Anything not produced by this package is KindFatal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrUnauthorizedActor):
		return KindUnauthorizedActor
	case errors.Is(err, ErrPreconditionFailed):
		return KindPreconditionFailed
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrConcurrentModification):
		return KindConcurrentModification
	case errors.Is(err, ErrAuditWriteDegraded):
		return KindAuditWriteDegraded
	case errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindInvalidInput
	default:
		return KindFatal
	}
}
