package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

func newTestOrderStore(t *testing.T) storage.OrderStore {
	t.Helper()
	store, backend, err := NewMemoryOrderStore()
	if err != nil {
		t.Fatalf("failed to create in-memory order store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})
	return store
}

func testOrder(id, customerID, customerName string) *core.Order {
	return &core.Order{
		OrderID:      id,
		CustomerID:   customerID,
		CustomerName: customerName,
		Items: []core.OrderItem{
			{ItemName: "Pepperoni Pizza", Quantity: 1, UnitPrice: 14.00},
			{ItemName: "Chocolate Lava Cake", Quantity: 2, UnitPrice: 8.00},
		},
		TotalPrice: 30.00,
	}
}

func TestOrderCreateAndGet(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	order := testOrder("ORD-1", "cust-42", "Dana")
	created, err := orders.CreateOrder(ctx, order)
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if !created {
		t.Fatal("expected creation to succeed")
	}
	if order.Status != core.StatusPending {
		t.Fatalf("expected Pending, got %q", order.Status)
	}
	if order.Items[1].Subtotal != 16.00 {
		t.Fatalf("expected computed subtotal 16.00, got %v", order.Items[1].Subtotal)
	}

	created, err = orders.CreateOrder(ctx, testOrder("ORD-1", "cust-42", "Dana"))
	if err != nil {
		t.Fatalf("duplicate create returned error: %v", err)
	}
	if created {
		t.Fatal("expected duplicate create to report false")
	}

	got, err := orders.GetOrder(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if got.TotalPrice != 30.00 {
		t.Fatalf("expected total 30.00, got %v", got.TotalPrice)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}

	if _, err := orders.GetOrder(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderListByCustomerReverseIndex(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := orders.CreateOrder(ctx, testOrder(fmt.Sprintf("ORD-%d", i), "cust-42", "Dana")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := orders.CreateOrder(ctx, testOrder("ORD-OTHER", "cust-99", "Riley")); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.UpdateStatus(ctx, "ORD-1", core.StatusCompleted); err != nil {
		t.Fatal(err)
	}

	got, err := orders.ListByCustomer(ctx, "Dana", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(got))
	}
	if got[0].OrderID != "ORD-2" || got[2].OrderID != "ORD-0" {
		t.Fatalf("expected newest first, got %q .. %q", got[0].OrderID, got[2].OrderID)
	}

	limited, err := orders.ListByCustomer(ctx, "Dana", 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit respected, got %d", len(limited))
	}

	completed, err := orders.ListByCustomer(ctx, "Dana", 0, core.StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].OrderID != "ORD-1" {
		t.Fatalf("unexpected filtered result: %+v", completed)
	}

	if _, err := orders.ListByCustomer(ctx, "Dana", 0, "bogus"); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestOrderLastOrder(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	got, err := orders.LastOrder(ctx, "cust-42")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for no orders, got %+v", got)
	}

	for i := 0; i < 2; i++ {
		if _, err := orders.CreateOrder(ctx, testOrder(fmt.Sprintf("ORD-%d", i), "cust-42", "Dana")); err != nil {
			t.Fatal(err)
		}
	}

	got, err = orders.LastOrder(ctx, "cust-42")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.OrderID != "ORD-1" {
		t.Fatalf("expected most recent order, got %+v", got)
	}
}

func TestOrderStatusIndexMoves(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := orders.CreateOrder(ctx, testOrder(fmt.Sprintf("ORD-%d", i), "cust-42", "Dana")); err != nil {
			t.Fatal(err)
		}
	}

	updated, err := orders.UpdateStatus(ctx, "ORD-1", core.StatusReady)
	if err != nil || !updated {
		t.Fatalf("failed to update status: %v / %v", updated, err)
	}

	pending, err := orders.ListByStatus(ctx, core.StatusPending, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(pending))
	}
	// FIFO: oldest first
	if pending[0].OrderID != "ORD-0" || pending[1].OrderID != "ORD-2" {
		t.Fatalf("unexpected FIFO order: %q, %q", pending[0].OrderID, pending[1].OrderID)
	}

	ready, err := orders.ListByStatus(ctx, core.StatusReady, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ready) != 1 || ready[0].OrderID != "ORD-1" {
		t.Fatalf("unexpected ready list: %+v", ready)
	}

	if _, err := orders.UpdateStatus(ctx, "ORD-1", "Teleported"); !errors.Is(err, core.ErrInvalidOrderStatus) {
		t.Fatalf("expected ErrInvalidOrderStatus, got %v", err)
	}
	if updated, err := orders.UpdateStatus(ctx, "missing", core.StatusReady); err != nil || updated {
		t.Fatalf("expected missing order to report false, got %v / %v", updated, err)
	}
}

func TestOrderUpdateReadyTime(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	if _, err := orders.CreateOrder(ctx, testOrder("ORD-1", "cust-42", "Dana")); err != nil {
		t.Fatal(err)
	}

	ready := time.Now().UTC().Add(20 * time.Minute).Format(time.RFC3339)
	updated, err := orders.UpdateReadyTime(ctx, "ORD-1", ready)
	if err != nil || !updated {
		t.Fatalf("failed to update ready time: %v / %v", updated, err)
	}

	got, err := orders.GetOrder(ctx, "ORD-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.EstimatedReadyTime != ready {
		t.Fatalf("expected %q, got %q", ready, got.EstimatedReadyTime)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected UpdatedAt to advance, got %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestOrderStatisticsScan(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	if _, err := orders.CreateOrder(ctx, testOrder("ORD-0", "cust-1", "Dana")); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.CreateOrder(ctx, testOrder("ORD-1", "cust-1", "Dana")); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.CreateOrder(ctx, testOrder("ORD-2", "cust-2", "Riley")); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.UpdateStatus(ctx, "ORD-0", core.StatusCancelled); err != nil {
		t.Fatal(err)
	}

	stats, err := orders.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", stats.TotalOrders)
	}
	if stats.TotalRevenue != 90.00 {
		t.Fatalf("expected revenue 90.00, got %v", stats.TotalRevenue)
	}
	if stats.StatusBreakdown[core.StatusPending] != 2 || stats.StatusBreakdown[core.StatusCancelled] != 1 {
		t.Fatalf("unexpected breakdown: %+v", stats.StatusBreakdown)
	}
	if stats.UniqueCustomers != 2 {
		t.Fatalf("expected 2 unique customers, got %d", stats.UniqueCustomers)
	}
}

func TestOrderDeleteCleansIndexes(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	if _, err := orders.CreateOrder(ctx, testOrder("ORD-1", "cust-42", "Dana")); err != nil {
		t.Fatal(err)
	}

	deleted, err := orders.DeleteOrder(ctx, "ORD-1")
	if err != nil || !deleted {
		t.Fatalf("failed to delete: %v / %v", deleted, err)
	}
	if deleted, err := orders.DeleteOrder(ctx, "ORD-1"); err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v / %v", deleted, err)
	}

	byCustomer, err := orders.ListByCustomer(ctx, "Dana", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(byCustomer) != 0 {
		t.Fatalf("expected customer index cleaned, got %d entries", len(byCustomer))
	}
	byStatus, err := orders.ListByStatus(ctx, core.StatusPending, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 0 {
		t.Fatalf("expected status index cleaned, got %d entries", len(byStatus))
	}
}

func TestOrderClearAllKeepsSequence(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := orders.CreateOrder(ctx, testOrder(fmt.Sprintf("ORD-%d", i), "cust-42", "Dana")); err != nil {
			t.Fatal(err)
		}
	}
	if err := orders.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}

	stats, err := orders.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalOrders != 0 {
		t.Fatalf("expected no orders after clear, got %d", stats.TotalOrders)
	}

	// New orders after a clear still list in creation order
	for i := 0; i < 2; i++ {
		if _, err := orders.CreateOrder(ctx, testOrder(fmt.Sprintf("NEW-%d", i), "cust-42", "Dana")); err != nil {
			t.Fatal(err)
		}
	}
	got, err := orders.ListByCustomer(ctx, "Dana", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].OrderID != "NEW-1" {
		t.Fatalf("unexpected post-clear listing: %+v", got)
	}
}

func TestOrderFormatSummary(t *testing.T) {
	orders := newTestOrderStore(t)
	ctx := context.Background()

	summary, err := orders.FormatSummary(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if summary != storage.OrderNotFound {
		t.Fatalf("expected %q, got %q", storage.OrderNotFound, summary)
	}

	if _, err := orders.CreateOrder(ctx, testOrder("ORD-1", "cust-42", "Dana")); err != nil {
		t.Fatal(err)
	}
	summary, err = orders.FormatSummary(ctx, "ORD-1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "ORDER #ORD-1") || !strings.Contains(summary, "Total: $30.00") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}
