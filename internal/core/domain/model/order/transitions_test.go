package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGraph(t *testing.T) {
	g := order.OrderGraph()

	t.Run("every edge into production carries the payment gate", func(t *testing.T) {
		for _, e := range g.Edges() {
			if e.To.IsProductionStage() {
				assert.True(t, e.Requires(order.PrePaymentReceived), e.Action())
			}
		}
	})

	t.Run("every non terminal state has a way forward", func(t *testing.T) {
		for _, s := range order.AllStates() {
			if s.IsTerminal() {
				assert.Empty(t, g.Next(s))
				continue
			}
			assert.NotEmpty(t, g.Next(s), s.String())
		}
	})

	t.Run("qc uploads branch into approval and retry", func(t *testing.T) {
		next := g.Next(order.SampleQCUploaded)
		require.Len(t, next, 2)
		assert.Equal(t, order.SampleApproved, next[0].To)
		assert.Equal(t, order.SampleInProgress, next[1].To)
		assert.True(t, next[1].Requires(order.PreRejectionReason))

		bulkRetry, ok := g.Lookup(order.BulkQCUploaded, order.BulkInProduction)
		require.True(t, ok)
		assert.True(t, bulkRetry.Requires(order.PreQCFeedback))
		assert.True(t, bulkRetry.Allows(kernel.RoleAdmin))
		assert.False(t, bulkRetry.Allows(kernel.RoleManufacturer))
	})

	t.Run("lookup misses non edges", func(t *testing.T) {
		_, ok := g.Lookup(order.Draft, order.Completed)
		assert.False(t, ok)
		_, ok = g.Lookup(order.Submitted, order.Draft)
		assert.False(t, ok)
	})
}

func TestDeliveryGraph(t *testing.T) {
	g := order.DeliveryGraph()

	pack, ok := g.Lookup(order.NotStarted, order.Packed)
	require.True(t, ok)
	assert.Equal(t, []kernel.Role{kernel.RoleManufacturer}, pack.Roles)
	assert.True(t, pack.Requires(order.PrePackagingEvidence))

	schedule, ok := g.Lookup(order.Packed, order.PickupScheduled)
	require.True(t, ok)
	assert.True(t, schedule.Requires(order.PreCourierDetails))

	_, ok = g.Lookup(order.NotStarted, order.PickupScheduled)
	assert.False(t, ok)
	assert.Equal(t, order.DeliveryMachine, g.Machine())
}

func TestQCStageOf(t *testing.T) {
	stage, ok := order.QCStageOf(order.SampleInProgress, order.SampleQCUploaded)
	assert.True(t, ok)
	assert.Equal(t, order.SampleStage, stage)

	stage, ok = order.QCStageOf(order.BulkQCUploaded, order.ReadyForDispatch)
	assert.True(t, ok)
	assert.Equal(t, order.BulkStage, stage)

	_, ok = order.QCStageOf(order.Dispatched, order.Delivered)
	assert.False(t, ok)

	assert.True(t, order.IsQCRejection(order.SampleQCUploaded, order.SampleInProgress))
	assert.False(t, order.IsQCRejection(order.SampleQCUploaded, order.SampleApproved))
}
