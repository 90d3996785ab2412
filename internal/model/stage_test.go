package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageSequence(t *testing.T) {
	seq := StageSequence()
	require.Len(t, seq, 9)
	assert.Equal(t, StageOrdered, seq[0])
	assert.Equal(t, StageOrderCompleted, seq[8])

	for i, stage := range seq {
		assert.Equal(t, i, StageIndex(stage))
	}
	assert.Equal(t, -1, StageIndex(Stage("shipped")))
}

func TestStageActor(t *testing.T) {
	cases := map[Stage]string{
		StageOrdered:         RoleSupervisor,
		StageAdminAccepted:   RoleAdmin,
		StageVendorAccepted:  RoleVendor,
		StageOrderDispatched: RoleVendor,
		StageInTransit:       RoleVendor,
		StageReached:         RoleVendor,
		StageDelivered:       RoleVendor,
		StageInvoiceUploaded: RoleSupervisor,
		StageOrderCompleted:  RoleAdmin,
	}
	for stage, role := range cases {
		assert.Equal(t, role, StageActor(stage), "actor for %s", stage)
	}
	assert.Empty(t, StageActor(Stage("shipped")))
}

func TestStageMessage(t *testing.T) {
	t.Run("pending text depends on the viewer", func(t *testing.T) {
		assert.Equal(t, "Approve order", StageMessage(StageAdminAccepted, RoleAdmin, false))
		assert.Equal(t, "Admin accepted", StageMessage(StageAdminAccepted, RoleSupervisor, false))
		assert.Equal(t, "Accept Order", StageMessage(StageVendorAccepted, RoleVendor, false))
		assert.Equal(t, "Upload Invoice", StageMessage(StageInvoiceUploaded, RoleSupervisor, false))
	})

	t.Run("done overrides apply only for the acting role", func(t *testing.T) {
		assert.Equal(t, "Admin Approved", StageMessage(StageAdminAccepted, RoleAdmin, true))
		assert.Equal(t, "Vendor Accepted", StageMessage(StageVendorAccepted, RoleVendor, true))
		assert.Equal(t, "Invoice Uploaded", StageMessage(StageInvoiceUploaded, RoleSupervisor, true))

		// No override: the pending label carries over
		assert.Equal(t, "Admin accepted", StageMessage(StageAdminAccepted, RoleSupervisor, true))
		assert.Equal(t, "Order Completed", StageMessage(StageOrderCompleted, RoleAdmin, true))
	})

	t.Run("unknown stage yields empty", func(t *testing.T) {
		assert.Empty(t, StageMessage(Stage("shipped"), RoleAdmin, false))
	})
}

func TestPendingStage(t *testing.T) {
	now := time.Now()

	track := func(done int) *Order {
		order := &Order{}
		for i, stage := range StageSequence() {
			row := OrderStage{Stage: stage, Sequence: i}
			if i < done {
				row.Status = true
				row.Date = &now
			}
			order.Stages = append(order.Stages, row)
		}
		return order
	}

	t.Run("first pending stage in track order", func(t *testing.T) {
		pending := track(1).PendingStage()
		require.NotNil(t, pending)
		assert.Equal(t, StageAdminAccepted, *pending)

		pending = track(7).PendingStage()
		require.NotNil(t, pending)
		assert.Equal(t, StageInvoiceUploaded, *pending)
	})

	t.Run("nil once every stage is done", func(t *testing.T) {
		assert.Nil(t, track(9).PendingStage())
	})

	t.Run("insertion order does not matter", func(t *testing.T) {
		order := track(3)
		order.Stages[0], order.Stages[8] = order.Stages[8], order.Stages[0]
		order.Stages[2], order.Stages[5] = order.Stages[5], order.Stages[2]

		pending := order.PendingStage()
		require.NotNil(t, pending)
		assert.Equal(t, StageOrderDispatched, *pending)

		sorted := order.SortedStages()
		for i, row := range sorted {
			assert.Equal(t, i, row.Sequence)
		}
	})
}
