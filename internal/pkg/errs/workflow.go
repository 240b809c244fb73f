package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrUnauthorizedActor      = errors.New("actor is not authorized")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrAuditWriteDegraded     = errors.New("audit write degraded")
)

// InvalidTransitionError is returned when the requested edge is absent from the
// state graph. Machine names the graph ("order" or "delivery").
type InvalidTransitionError struct {
	Machine string
	From    string
	To      string
}

func NewInvalidTransitionError(machine, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Machine: machine,
		From:    from,
		To:      to,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s state %s -> %s", ErrInvalidTransition, e.Machine, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// UnauthorizedActorError is returned when the edge exists but the acting role is not
// in its role set, or the actor is not the party bound to the order.
type UnauthorizedActorError struct {
	Role         string
	ActorID      string
	Action       string
	AllowedRoles []string
	Cause        error
}

func NewUnauthorizedActorError(role, actorID, action string, allowedRoles []string) *UnauthorizedActorError {
	return &UnauthorizedActorError{
		Role:         role,
		ActorID:      actorID,
		Action:       action,
		AllowedRoles: allowedRoles,
	}
}

func NewUnauthorizedActorErrorWithCause(
	role, actorID, action string,
	allowedRoles []string,
	cause error,
) *UnauthorizedActorError {
	return &UnauthorizedActorError{
		Role:         role,
		ActorID:      actorID,
		Action:       action,
		AllowedRoles: allowedRoles,
		Cause:        cause,
	}
}

func (e *UnauthorizedActorError) Error() string {
	msg := fmt.Sprintf("%s: %s %s may not %s, allowed roles: %s",
		ErrUnauthorizedActor, e.Role, e.ActorID, e.Action, strings.Join(e.AllowedRoles, ", "))
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *UnauthorizedActorError) Unwrap() error {
	return ErrUnauthorizedActor
}

// PreconditionFailedError is returned when edge and role are valid but an attribute
// the edge depends on is missing or malformed. Reason is meant for end users.
type PreconditionFailedError struct {
	Precondition string
	Reason       string
}

func NewPreconditionFailedError(precondition, reason string) *PreconditionFailedError {
	return &PreconditionFailedError{
		Precondition: precondition,
		Reason:       reason,
	}
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPreconditionFailed, e.Precondition, e.Reason)
}

func (e *PreconditionFailedError) Unwrap() error {
	return ErrPreconditionFailed
}

// ConcurrentModificationError is returned when a version-conditioned write found the
// aggregate already changed by someone else. Callers should reload and retry.
type ConcurrentModificationError struct {
	ID      string
	Version int64
	Cause   error
}

func NewConcurrentModificationError(id string, version int64) *ConcurrentModificationError {
	return &ConcurrentModificationError{
		ID:      id,
		Version: version,
	}
}

func NewConcurrentModificationErrorWithCause(id string, version int64, cause error) *ConcurrentModificationError {
	return &ConcurrentModificationError{
		ID:      id,
		Version: version,
		Cause:   cause,
	}
}

func (e *ConcurrentModificationError) Error() string {
	msg := fmt.Sprintf("%s: %s changed after version %d", ErrConcurrentModification, e.ID, e.Version)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ConcurrentModificationError) Unwrap() error {
	return ErrConcurrentModification
}

// AuditWriteDegradedError is a warning: the business transition committed but its
// audit record could not be persisted.
type AuditWriteDegradedError struct {
	OrderID string
	Cause   error
}

func NewAuditWriteDegradedError(orderID string, cause error) *AuditWriteDegradedError {
	return &AuditWriteDegradedError{
		OrderID: orderID,
		Cause:   cause,
	}
}

func (e *AuditWriteDegradedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: order %s (cause: %v)", ErrAuditWriteDegraded, e.OrderID, e.Cause)
	}
	return fmt.Sprintf("%s: order %s", ErrAuditWriteDegraded, e.OrderID)
}

func (e *AuditWriteDegradedError) Unwrap() error {
	return ErrAuditWriteDegraded
}
