package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// DeliveryState is the order-scoped physical fulfilment lifecycle. It is strictly
// linear and terminal at DeliveryDelivered:
//
//	NotStarted -> Packed -> PickupScheduled -> InTransit -> DeliveryDelivered
type DeliveryState int

const (
	UnknownDeliveryState DeliveryState = iota
	NotStarted
	Packed
	PickupScheduled
	InTransit
	DeliveryDelivered
)

func getDeliveryStateStrings() map[DeliveryState]string {
	return map[DeliveryState]string{
		UnknownDeliveryState: "UNKNOWN",
		NotStarted:           "NOT_STARTED",
		Packed:               "PACKED",
		PickupScheduled:      "PICKUP_SCHEDULED",
		InTransit:            "IN_TRANSIT",
		DeliveryDelivered:    "DELIVERED",
	}
}

func ParseDeliveryState(name string) (DeliveryState, error) {
	for s, str := range getDeliveryStateStrings() {
		if s != UnknownDeliveryState && str == name {
			return s, nil
		}
	}
	return UnknownDeliveryState, errs.NewValueIsInvalidErrorWithCause(
		"delivery state is invalid",
		fmt.Errorf("%q is not a valid delivery state", name),
	)
}

func (s DeliveryState) Validate() error {
	if s < NotStarted || s > DeliveryDelivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery state is invalid",
			fmt.Errorf("%d is not a valid delivery state", int(s)),
		)
	}
	return nil
}

func (s DeliveryState) String() string {
	if str, ok := getDeliveryStateStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// HasStarted is false only for NotStarted.
func (s DeliveryState) HasStarted() bool {
	return s > NotStarted
}

// AtLeast compares positions on the linear delivery lifecycle.
func (s DeliveryState) AtLeast(other DeliveryState) bool {
	return s >= other
}
