package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrDecideQCCommandIsNotConstructed = errors.New(
	"DecideQCCommand must be created via NewDecideQCCommand constructor",
)

// DecideQCCommand is the buyer's (or an admin's) verdict on uploaded QC evidence.
// Approval advances the order; rejection sends it back to production with a reason
// and, for bulk QC, structured feedback.
//
// Example:
//
//	fb, _ := order.NewQCFeedback("stitching", "major", "left sleeve", "re-stitch seams")
//	cmd, err := NewRejectQCCommand(orderID, buyer, order.BulkStage, "Seams come apart under light tension", &fb)
type DecideQCCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	stage      order.QCStage
	approved   bool
	guard      guard.ConstructorGuard
}

// NewApproveQCCommand approves the evidence uploaded for stage.
func NewApproveQCCommand(orderID kernel.UUID, actor kernel.Actor, stage order.QCStage) (DecideQCCommand, error) {
	if err := stage.Validate(); err != nil {
		return DecideQCCommand{}, err
	}
	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(stage.ApprovedState()), nil, order.Patch{})
	if err != nil {
		return DecideQCCommand{}, err
	}
	return DecideQCCommand{transition: tc, stage: stage, approved: true, guard: guard.NewConstructorGuard()}, nil
}

// NewRejectQCCommand rejects the evidence uploaded for stage. The reason must be at
// least order.MinReasonLength characters; feedback is mandatory for bulk QC and must
// be complete whenever it is given.
func NewRejectQCCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	stage order.QCStage,
	reason string,
	feedback *order.QCFeedback,
) (DecideQCCommand, error) {
	if err := stage.Validate(); err != nil {
		return DecideQCCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	if err := order.ValidateReason("qc rejection reason", reason); err != nil {
		return DecideQCCommand{}, err
	}
	if feedback == nil && stage.FeedbackRequired() {
		return DecideQCCommand{}, errs.NewValueIsRequiredError("qc feedback")
	}
	if feedback != nil {
		if err := feedback.Validate(); err != nil {
			return DecideQCCommand{}, err
		}
	}

	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(stage.ProductionState()), nil,
		order.Patch{QCReview: &order.QCReview{Reason: reason, Feedback: feedback}})
	if err != nil {
		return DecideQCCommand{}, err
	}
	return DecideQCCommand{transition: tc, stage: stage, guard: guard.NewConstructorGuard()}, nil
}

func (c DecideQCCommand) Validate() error {
	return c.guard.Validate(ErrDecideQCCommandIsNotConstructed)
}

func (c DecideQCCommand) Stage() order.QCStage {
	return c.stage
}

func (c DecideQCCommand) Approved() bool {
	return c.approved
}

func (c DecideQCCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
