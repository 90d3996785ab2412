package service

import (
	"context"
	"testing"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, w *world, quantity int) OrderResponse {
	t.Helper()
	order, err := w.env.orders.Create(context.Background(), w.supervisor.ID, CreateOrderRequest{
		ProductID: w.product.ID.String(),
		Quantity:  quantity,
	})
	require.NoError(t, err)
	return order
}

// runLifecycle advances a freshly created order through every remaining
// stage up to completion.
func runLifecycle(t *testing.T, w *world, orderID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	steps := []struct {
		stage   model.Stage
		role    string
		actor   uuid.UUID
		payload AdvancePayload
	}{
		{model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()}},
		{model.StageVendorAccepted, model.RoleVendor, w.vendor.ID, AdvancePayload{}},
		{model.StageOrderDispatched, model.RoleVendor, w.vendor.ID, AdvancePayload{}},
		{model.StageInTransit, model.RoleVendor, w.vendor.ID, AdvancePayload{}},
		{model.StageReached, model.RoleVendor, w.vendor.ID, AdvancePayload{}},
		{model.StageDelivered, model.RoleVendor, w.vendor.ID, AdvancePayload{}},
		{model.StageInvoiceUploaded, model.RoleSupervisor, w.supervisor.ID, AdvancePayload{InvoiceImage: []byte("fake-png")}},
		{model.StageOrderCompleted, model.RoleAdmin, w.admin.ID, AdvancePayload{}},
	}
	for _, step := range steps {
		_, err := w.env.orders.Advance(ctx, orderID, step.stage, step.role, step.actor, step.payload)
		require.NoError(t, err, "advancing to %s", step.stage)
	}
}

func TestCreateOrder(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	t.Run("creates nine stage track with ordered done", func(t *testing.T) {
		order := createOrder(t, w, 10)

		assert.Equal(t, 10, order.Quantity)
		assert.Equal(t, "125", order.TotalAmount)
		assert.Equal(t, "Surgical Masks", order.ProductName)
		require.Len(t, order.Stages, 9)

		assert.Equal(t, string(model.StageOrdered), order.Stages[0].Stage)
		assert.True(t, order.Stages[0].Status)
		assert.NotNil(t, order.Stages[0].Date)
		for _, stage := range order.Stages[1:] {
			assert.False(t, stage.Status, "stage %s should start pending", stage.Stage)
			assert.Nil(t, stage.Date)
		}

		require.NotNil(t, order.PendingStage)
		assert.Equal(t, string(model.StageAdminAccepted), *order.PendingStage)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := w.env.orders.Create(ctx, w.supervisor.ID, CreateOrderRequest{
			ProductID: w.product.ID.String(),
			Quantity:  0,
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		_, err := w.env.orders.Create(ctx, w.supervisor.ID, CreateOrderRequest{
			ProductID: uuid.NewString(),
			Quantity:  5,
		})
		assert.ErrorIs(t, err, ErrInvalidProduct)
	})

	t.Run("rejects malformed product id", func(t *testing.T) {
		_, err := w.env.orders.Create(ctx, w.supervisor.ID, CreateOrderRequest{
			ProductID: "not-a-uuid",
			Quantity:  5,
		})
		assert.ErrorIs(t, err, ErrInvalidProduct)
	})
}

func TestAdvanceSequence(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	t.Run("full lifecycle completes every stage in order", func(t *testing.T) {
		order := createOrder(t, w, 10)
		orderID := uuid.MustParse(order.ID)

		runLifecycle(t, w, orderID)

		final, err := w.env.orders.Get(ctx, orderID, model.RoleAdmin, w.admin.ID)
		require.NoError(t, err)
		assert.Nil(t, final.PendingStage)
		for _, stage := range final.Stages {
			assert.True(t, stage.Status, "stage %s should be done", stage.Stage)
			assert.NotNil(t, stage.Date)
		}
	})

	t.Run("skipping a stage is out of sequence", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		// vendorAccepted before adminAccepted
		_, err := w.env.orders.Advance(ctx, orderID, model.StageVendorAccepted, model.RoleVendor, w.vendor.ID, AdvancePayload{})
		assert.ErrorIs(t, err, ErrOutOfSequence)
	})

	t.Run("repeating a done stage is out of sequence", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		_, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
		require.NoError(t, err)

		_, err = w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
		assert.ErrorIs(t, err, ErrOutOfSequence)
	})

	t.Run("wrong role is unauthorized", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		_, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleVendor, w.vendor.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown stage name is invalid", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		_, err := w.env.orders.Advance(ctx, orderID, model.Stage("shipped"), model.RoleAdmin, w.admin.ID, AdvancePayload{})
		assert.ErrorIs(t, err, ErrInvalidStage)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		_, err := w.env.orders.Advance(ctx, uuid.New(), model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestAdvanceVendorAssignment(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	t.Run("approval assigns the vendor", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		approved, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
		require.NoError(t, err)
		require.NotNil(t, approved.Vendor)
		assert.Equal(t, w.vendor.Name, *approved.Vendor)
	})

	t.Run("rejects a non-vendor account", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		_, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.supervisor.ID.String()})
		assert.ErrorIs(t, err, ErrInvalidVendor)
	})

	t.Run("rejects an unknown vendor id", func(t *testing.T) {
		order := createOrder(t, w, 5)
		orderID := uuid.MustParse(order.ID)

		_, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: uuid.NewString()})
		assert.ErrorIs(t, err, ErrInvalidVendor)

		_, err = w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: "garbage"})
		assert.ErrorIs(t, err, ErrInvalidVendor)
	})
}

func TestAdvanceInvoiceUpload(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	order := createOrder(t, w, 5)
	orderID := uuid.MustParse(order.ID)

	// Walk to delivered
	steps := []struct {
		stage model.Stage
		role  string
		actor uuid.UUID
	}{
		{model.StageVendorAccepted, model.RoleVendor, w.vendor.ID},
		{model.StageOrderDispatched, model.RoleVendor, w.vendor.ID},
		{model.StageInTransit, model.RoleVendor, w.vendor.ID},
		{model.StageReached, model.RoleVendor, w.vendor.ID},
		{model.StageDelivered, model.RoleVendor, w.vendor.ID},
	}
	_, err := w.env.orders.Advance(ctx, orderID, model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
	require.NoError(t, err)
	for _, step := range steps {
		_, err := w.env.orders.Advance(ctx, orderID, step.stage, step.role, step.actor, AdvancePayload{})
		require.NoError(t, err)
	}

	t.Run("rejects empty invoice", func(t *testing.T) {
		_, err := w.env.orders.Advance(ctx, orderID, model.StageInvoiceUploaded, model.RoleSupervisor, w.supervisor.ID, AdvancePayload{})
		assert.ErrorIs(t, err, ErrMissingInvoice)
	})

	t.Run("stores the invoice blob", func(t *testing.T) {
		blob := []byte{0x89, 0x50, 0x4e, 0x47}
		_, err := w.env.orders.Advance(ctx, orderID, model.StageInvoiceUploaded, model.RoleSupervisor, w.supervisor.ID, AdvancePayload{InvoiceImage: blob})
		require.NoError(t, err)

		stored, err := w.env.orders.InvoiceImage(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, blob, stored)
	})
}

func TestCompletionCreditsInventory(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	t.Run("first completion creates the ledger", func(t *testing.T) {
		order := createOrder(t, w, 10)
		runLifecycle(t, w, uuid.MustParse(order.ID))

		ledgers, err := w.env.inventory.ListBySupervisor(ctx, w.supervisor.ID)
		require.NoError(t, err)
		require.Len(t, ledgers, 1)
		assert.Equal(t, 10, ledgers[0].TotalQuantity)
		assert.Equal(t, 10, ledgers[0].LeftQuantity)

		history, err := w.env.inventory.History(ctx, uuid.MustParse(ledgers[0].ID), w.supervisor.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.EntryKindAdded, history[0].Kind)
		assert.Equal(t, 10, history[0].Quantity)
		assert.Equal(t, "10 items added to inventory.", history[0].Detail)
	})

	t.Run("second completion credits the same ledger", func(t *testing.T) {
		order := createOrder(t, w, 7)
		runLifecycle(t, w, uuid.MustParse(order.ID))

		ledgers, err := w.env.inventory.ListBySupervisor(ctx, w.supervisor.ID)
		require.NoError(t, err)
		require.Len(t, ledgers, 1)
		assert.Equal(t, 17, ledgers[0].TotalQuantity)
		assert.Equal(t, 17, ledgers[0].LeftQuantity)

		history, err := w.env.inventory.History(ctx, uuid.MustParse(ledgers[0].ID), w.supervisor.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
	})
}

func TestGetOrderScoping(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	order := createOrder(t, w, 5)
	orderID := uuid.MustParse(order.ID)

	otherSupervisor := w.env.seedUser(t, "Mina", "mina@example.com", model.RoleSupervisor, w.location)

	t.Run("owner sees the order", func(t *testing.T) {
		_, err := w.env.orders.Get(ctx, orderID, model.RoleSupervisor, w.supervisor.ID)
		assert.NoError(t, err)
	})

	t.Run("admin sees every order", func(t *testing.T) {
		_, err := w.env.orders.Get(ctx, orderID, model.RoleAdmin, w.admin.ID)
		assert.NoError(t, err)
	})

	t.Run("another supervisor gets not found", func(t *testing.T) {
		_, err := w.env.orders.Get(ctx, orderID, model.RoleSupervisor, otherSupervisor.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("unassigned vendor gets not found", func(t *testing.T) {
		_, err := w.env.orders.Get(ctx, orderID, model.RoleVendor, w.vendor.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListOrders(t *testing.T) {
	w := seedWorld(t)
	ctx := context.Background()

	first := createOrder(t, w, 3)
	createOrder(t, w, 4)

	// Assign the vendor on the first order only
	_, err := w.env.orders.Advance(ctx, uuid.MustParse(first.ID), model.StageAdminAccepted, model.RoleAdmin, w.admin.ID, AdvancePayload{VendorID: w.vendor.ID.String()})
	require.NoError(t, err)

	t.Run("admin sees all", func(t *testing.T) {
		orders, total, err := w.env.orders.List(ctx, model.RoleAdmin, w.admin.ID, 0, 0, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, orders, 2)
	})

	t.Run("supervisor sees own", func(t *testing.T) {
		_, total, err := w.env.orders.List(ctx, model.RoleSupervisor, w.supervisor.ID, 0, 0, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("vendor sees assigned only", func(t *testing.T) {
		orders, total, err := w.env.orders.List(ctx, model.RoleVendor, w.vendor.ID, 0, 0, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("month filter excludes other months", func(t *testing.T) {
		now := time.Now()
		_, total, err := w.env.orders.List(ctx, model.RoleAdmin, w.admin.ID, int(now.Month()), now.Year(), 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		lastYear := now.AddDate(-1, 0, 0)
		_, total, err = w.env.orders.List(ctx, model.RoleAdmin, w.admin.ID, int(lastYear.Month()), lastYear.Year(), 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})
}
