package audit_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderID = kernel.NewUUID()
	t0      = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func ev(seq int64, outcome audit.Outcome, machine order.Machine, from, to string) audit.Event {
	return audit.Event{
		Seq:       seq,
		OrderID:   orderID,
		ActorRole: kernel.RoleAdmin,
		Outcome:   outcome,
		Machine:   machine,
		From:      from,
		To:        to,
		CreatedAt: t0.Add(time.Duration(seq) * time.Minute),
	}
}

func TestReplay(t *testing.T) {
	t.Run("should walk a valid trail to dispatch", func(t *testing.T) {
		// Given
		trail := []audit.Event{
			ev(1, audit.OutcomeTransition, order.OrderMachine, "", "DRAFT"),
			ev(2, audit.OutcomeTransition, order.OrderMachine, "DRAFT", "SUBMITTED"),
			ev(3, audit.OutcomeDenied, order.OrderMachine, "SUBMITTED", "COMPLETED"),
			ev(4, audit.OutcomeTransition, order.OrderMachine, "SUBMITTED", "ADMIN_APPROVED"),
			ev(5, audit.OutcomeAttributeUpdate, order.OrderMachine, "ADMIN_APPROVED", "ADMIN_APPROVED"),
			ev(6, audit.OutcomeManualOverride, order.OrderMachine, "ADMIN_APPROVED", "BULK_QC_UPLOADED"),
			ev(7, audit.OutcomeTransition, order.DeliveryMachine, "NOT_STARTED", "PACKED"),
			ev(8, audit.OutcomeTransition, order.OrderMachine, "BULK_QC_UPLOADED", "READY_FOR_DISPATCH"),
		}

		// When
		res, err := audit.Replay(trail)

		// Then
		require.NoError(t, err)
		assert.Equal(t, order.ReadyForDispatch, res.State)
		assert.Equal(t, order.Packed, res.DeliveryState)
		assert.Equal(t, 4, res.Transitions)
		assert.Equal(t, 1, res.Overrides)
		assert.Equal(t, 1, res.Denied)
	})

	t.Run("should order events by sequence", func(t *testing.T) {
		trail := []audit.Event{
			ev(3, audit.OutcomeTransition, order.OrderMachine, "SUBMITTED", "ADMIN_APPROVED"),
			ev(2, audit.OutcomeTransition, order.OrderMachine, "DRAFT", "SUBMITTED"),
		}

		res, err := audit.Replay(trail)

		require.NoError(t, err)
		assert.Equal(t, order.AdminApproved, res.State)
	})

	t.Run("should reject a skipped edge", func(t *testing.T) {
		trail := []audit.Event{
			ev(1, audit.OutcomeTransition, order.OrderMachine, "DRAFT", "SUBMITTED"),
			ev(2, audit.OutcomeTransition, order.OrderMachine, "SUBMITTED", "PAYMENT_CONFIRMED"),
		}

		_, err := audit.Replay(trail)

		require.Error(t, err)
		assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))
		assert.Contains(t, err.Error(), "audit event 2")
	})

	t.Run("should reject a transition that does not start where the trail is", func(t *testing.T) {
		trail := []audit.Event{
			ev(1, audit.OutcomeTransition, order.OrderMachine, "SUBMITTED", "ADMIN_APPROVED"),
		}

		_, err := audit.Replay(trail)

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestEvent_Validate(t *testing.T) {
	t.Run("should accept a complete event", func(t *testing.T) {
		assert.NoError(t, ev(1, audit.OutcomeTransition, order.OrderMachine, "DRAFT", "SUBMITTED").Validate())
	})

	t.Run("should require an override reason", func(t *testing.T) {
		e := ev(1, audit.OutcomeManualOverride, order.OrderMachine, "DRAFT", "SUBMITTED")
		e.Reason = "oops"

		err := e.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "override reason")
	})

	t.Run("should name every missing field", func(t *testing.T) {
		err := audit.Event{Outcome: "archived", Machine: "invoice"}.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit outcome")
		assert.Contains(t, err.Error(), "audit machine")
		assert.Contains(t, err.Error(), "audit target state")
		assert.Contains(t, err.Error(), "audit timestamp")
	})
}

func TestNewChangeEvents(t *testing.T) {
	actorID := kernel.NewUUID()
	actor, err := kernel.NewActor(kernel.RoleManufacturer, &actorID)
	require.NoError(t, err)
	before := order.Snapshot{State: order.BulkQCUploaded, DeliveryState: order.NotStarted}

	t.Run("should split order and delivery moves", func(t *testing.T) {
		after := before
		after.State = order.ReadyForDispatch
		after.DeliveryState = order.Packed
		changes := order.Changes{Fields: []string{"state", "delivery_state"}}

		events := audit.NewChangeEvents(orderID, actor, audit.OutcomeTransition, before, after, changes, "", nil, t0)

		require.Len(t, events, 2)
		assert.Equal(t, order.OrderMachine, events[0].Machine)
		assert.Equal(t, "READY_FOR_DISPATCH", events[0].To)
		assert.Equal(t, changes.Fields, events[0].ChangedFields)
		assert.Equal(t, order.DeliveryMachine, events[1].Machine)
		assert.Equal(t, "NOT_STARTED", events[1].From)
		assert.Empty(t, events[1].ChangedFields)
		assert.True(t, events[1].ActorID.IsEqual(actorID))
	})

	t.Run("should record attribute updates on the order machine", func(t *testing.T) {
		changes := order.Changes{Fields: []string{order.FieldSpecsLocked}}

		events := audit.NewChangeEvents(orderID, actor, audit.OutcomeTransition, before, before, changes, "", nil, t0)

		require.Len(t, events, 1)
		assert.Equal(t, audit.OutcomeAttributeUpdate, events[0].Outcome)
		assert.Equal(t, events[0].From, events[0].To)
	})
}

func TestNewDeniedEvent(t *testing.T) {
	cause := errs.NewInvalidTransitionError("order", "DRAFT", "DISPATCHED")

	e := audit.NewDeniedEvent(orderID, kernel.SystemActor(), order.OrderMachine, "DRAFT", "DISPATCHED", cause,
		map[string]string{"request_id": "r-1"}, t0)

	assert.Equal(t, audit.OutcomeDenied, e.Outcome)
	assert.Equal(t, "InvalidTransition", e.Metadata["error_kind"])
	assert.Equal(t, "r-1", e.Metadata["request_id"])
	assert.Contains(t, e.Reason, "invalid transition")
	assert.Nil(t, e.ActorID)
	assert.NoError(t, e.Validate())
}
