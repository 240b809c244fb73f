package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_StringAndParse(t *testing.T) {
	for _, s := range order.AllStates() {
		parsed, err := order.ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.Len(t, order.AllStates(), 16)

	_, err := order.ParseState("UNKNOWN")
	assert.Error(t, err)
	assert.Error(t, order.UnknownState.Validate())
	assert.Equal(t, "UNKNOWN", order.State(99).String())
}

func TestState_Predicates(t *testing.T) {
	assert.False(t, order.PaymentConfirmed.IsProductionStage())
	assert.True(t, order.SampleInProgress.IsProductionStage())
	assert.True(t, order.Completed.IsProductionStage())
	assert.True(t, order.BulkQCUploaded.IsDispatchEligible())
	assert.False(t, order.Dispatched.IsDispatchEligible())
	assert.True(t, order.Completed.IsTerminal())
}

func TestDeliveryState(t *testing.T) {
	s, err := order.ParseDeliveryState("PICKUP_SCHEDULED")
	require.NoError(t, err)
	assert.Equal(t, order.PickupScheduled, s)
	assert.True(t, s.HasStarted())
	assert.True(t, s.AtLeast(order.Packed))
	assert.False(t, order.NotStarted.HasStarted())
	assert.Equal(t, "DELIVERED", order.DeliveryDelivered.String())
}
