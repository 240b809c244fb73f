package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrUploadQCCommandIsNotConstructed = errors.New(
	"UploadQCCommand must be created via NewUploadQCCommand constructor",
)

// UploadQCCommand submits QC video evidence for a stage and puts the stage up for
// buyer review.
type UploadQCCommand struct { //nolint:recvcheck //using for validation
	transition ApplyTransitionCommand
	stage      order.QCStage
	guard      guard.ConstructorGuard
}

func NewUploadQCCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	stage order.QCStage,
	videoRef string,
) (UploadQCCommand, error) {
	if err := stage.Validate(); err != nil {
		return UploadQCCommand{}, err
	}
	videoRef = strings.TrimSpace(videoRef)
	if videoRef == "" {
		return UploadQCCommand{}, errs.NewValueIsRequiredError("qc video")
	}

	tc, err := NewApplyTransitionCommand(orderID, actor, statePtr(stage.UploadedState()), nil,
		order.Patch{QCVideo: &order.QCVideo{Stage: stage, Ref: videoRef}})
	if err != nil {
		return UploadQCCommand{}, err
	}
	return UploadQCCommand{transition: tc, stage: stage, guard: guard.NewConstructorGuard()}, nil
}

func (c UploadQCCommand) Validate() error {
	return c.guard.Validate(ErrUploadQCCommandIsNotConstructed)
}

func (c UploadQCCommand) Stage() order.QCStage {
	return c.stage
}

func (c UploadQCCommand) Transition() (ApplyTransitionCommand, error) {
	if err := c.Validate(); err != nil {
		return ApplyTransitionCommand{}, err
	}
	return c.transition, nil
}
