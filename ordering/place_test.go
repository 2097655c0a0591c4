package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
	"github.com/poiesic/helpdesk/storage/badger"
)

func newTestService(t *testing.T, opts ...Option) (*Service, storage.OrderStore) {
	t.Helper()
	orders, backend, err := badger.NewMemoryOrderStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		orders.Close()
		backend.Close()
	})
	return NewService(orders, opts...), orders
}

func TestPlaceOrderSuccess(t *testing.T) {
	placedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, orders := newTestService(t,
		WithClock(func() time.Time { return placedAt }),
		WithIDGenerator(func() string { return "A1B2C3D4" }),
	)
	ctx := context.Background()

	conf, err := svc.PlaceOrder(ctx, "Dana", []ItemRequest{
		{ItemName: "Margherita Pizza", Quantity: 1},
		{ItemName: "Pepperoni Pizza", Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "A1B2C3D4", conf.OrderID)
	assert.Equal(t, core.StatusPending, conf.Status)
	assert.Equal(t, 40.00, conf.TotalPrice)
	assert.Equal(t, placedAt.Add(15*time.Minute).Format(time.RFC3339), conf.EstimatedReadyTime)
	assert.Contains(t, conf.Message, "Order A1B2C3D4 has been successfully placed!")

	// Unit prices come from the menu, and subtotals are stored
	stored, err := orders.GetOrder(ctx, "A1B2C3D4")
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 12.00, stored.Items[0].UnitPrice)
	assert.Equal(t, 28.00, stored.Items[1].Subtotal)
	assert.Equal(t, "place_order_tool", stored.Metadata["source"])
}

func TestPlaceOrderCollectsAllViolations(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "", []ItemRequest{
		{ItemName: "", Quantity: 1},
		{ItemName: "Margherita Pizza", Quantity: 0},
		{ItemName: "Sushi Platter", Quantity: 2},
	})
	require.Error(t, err)

	var violations core.ValidationErrors
	require.True(t, errors.As(err, &violations))
	assert.Len(t, violations, 4)
	assert.Contains(t, violations.Violations(), "customer name is required")
	assert.Contains(t, violations.Violations(), "empty item name provided")
	assert.Contains(t, violations.Violations(), "'Sushi Platter' is not available in the menu")
}

func TestPlaceOrderRequiresItems(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "Dana", nil)
	var violations core.ValidationErrors
	require.True(t, errors.As(err, &violations))
	assert.Contains(t, violations.Violations(), "at least one item must be ordered")
}

func TestOrderStatusNoOrders(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.OrderStatus(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.False(t, report.Found)
	assert.Contains(t, report.Message, "No orders found for customer: Nobody")
}

func TestOrderStatusMostRecent(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ids := []string{"FIRST111", "SECOND22"}
	svc, _ := newTestService(t,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, "Dana", []ItemRequest{{ItemName: "Caesar Salad", Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, "Dana", []ItemRequest{{ItemName: "Chocolate Lava Cake", Quantity: 3}})
	require.NoError(t, err)

	report, err := svc.OrderStatus(ctx, "Dana")
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Equal(t, "SECOND22", report.OrderID)
	assert.Equal(t, core.StatusPending, report.Status)
	assert.Equal(t, 24.00, report.TotalPrice)
	assert.Equal(t, 1, report.ItemsCount)
	assert.Equal(t, "15 minutes", report.EstimatedTime)
}

func TestEstimateRemainingWording(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := &Service{now: func() time.Time { return now }}

	assert.Equal(t, "Unknown", svc.estimateRemaining(""))
	assert.Equal(t, "Unknown", svc.estimateRemaining("not-a-time"))
	assert.Equal(t, "Ready for pickup", svc.estimateRemaining(now.Add(-time.Minute).Format(time.RFC3339)))
	assert.Equal(t, "Ready now", svc.estimateRemaining(now.Add(30*time.Second).Format(time.RFC3339)))
	assert.Equal(t, "5 minutes", svc.estimateRemaining(now.Add(5*time.Minute).Format(time.RFC3339)))
}
