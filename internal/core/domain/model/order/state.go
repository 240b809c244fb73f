package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// State is the primary lifecycle position of an order.
//
// State transitions (see transitions.go for roles and preconditions):
//
//	Draft -> Submitted -> AdminApproved -> ManufacturerAssigned -> PaymentRequested
//	  -> PaymentConfirmed -> SampleInProgress -> SampleQCUploaded
//	       SampleQCUploaded -> SampleApproved | SampleInProgress (retry)
//	  -> BulkUnlocked -> BulkInProduction -> BulkQCUploaded
//	       BulkQCUploaded -> ReadyForDispatch | BulkInProduction (retry)
//	  -> Dispatched -> Delivered -> Completed
//
// Completed is terminal.
type State int

const (
	// UnknownState (0) catches uninitialized values.
	UnknownState State = iota
	Draft
	Submitted
	AdminApproved
	ManufacturerAssigned
	PaymentRequested
	PaymentConfirmed
	SampleInProgress
	SampleQCUploaded
	SampleApproved
	BulkUnlocked
	BulkInProduction
	BulkQCUploaded
	ReadyForDispatch
	Dispatched
	Delivered
	Completed
)

func getStateStrings() map[State]string {
	return map[State]string{
		UnknownState:         "UNKNOWN",
		Draft:                "DRAFT",
		Submitted:            "SUBMITTED",
		AdminApproved:        "ADMIN_APPROVED",
		ManufacturerAssigned: "MANUFACTURER_ASSIGNED",
		PaymentRequested:     "PAYMENT_REQUESTED",
		PaymentConfirmed:     "PAYMENT_CONFIRMED",
		SampleInProgress:     "SAMPLE_IN_PROGRESS",
		SampleQCUploaded:     "SAMPLE_QC_UPLOADED",
		SampleApproved:       "SAMPLE_APPROVED",
		BulkUnlocked:         "BULK_UNLOCKED",
		BulkInProduction:     "BULK_IN_PRODUCTION",
		BulkQCUploaded:       "BULK_QC_UPLOADED",
		ReadyForDispatch:     "READY_FOR_DISPATCH",
		Dispatched:           "DISPATCHED",
		Delivered:            "DELIVERED",
		Completed:            "COMPLETED",
	}
}

// AllStates lists every valid state in lifecycle order.
func AllStates() []State {
	states := make([]State, 0, int(Completed))
	for s := Draft; s <= Completed; s++ {
		states = append(states, s)
	}
	return states
}

// ParseState maps a persisted or transported name back to a State.
func ParseState(name string) (State, error) {
	for s, str := range getStateStrings() {
		if s != UnknownState && str == name {
			return s, nil
		}
	}
	return UnknownState, errs.NewValueIsInvalidErrorWithCause(
		"order state is invalid",
		fmt.Errorf("%q is not a valid order state", name),
	)
}

// Validate rejects UnknownState and out-of-range values.
func (s State) Validate() error {
	if s < Draft || s > Completed {
		return errs.NewValueIsInvalidErrorWithCause(
			"order state is invalid",
			fmt.Errorf("%d is not a valid order state", int(s)),
		)
	}
	return nil
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsProductionStage reports whether s is SampleInProgress or any later state.
// Entering these states is gated on payment.
func (s State) IsProductionStage() bool {
	return s >= SampleInProgress && s <= Completed
}

// IsDispatchEligible reports whether delivery packing may start.
func (s State) IsDispatchEligible() bool {
	return s == ReadyForDispatch || s == BulkQCUploaded
}

func (s State) IsTerminal() bool {
	return s == Completed
}
