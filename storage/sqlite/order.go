package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

// OrderStore implements storage.OrderStore on SQLite. Order and item
// rows are written in one transaction so a failed create leaves no
// partial items visible to other readers.
type OrderStore struct {
	store *Store
}

var _ storage.OrderStore = (*OrderStore)(nil)

var errAlreadyExists = errors.New("already exists")

// CreateOrder persists the order and its items atomically with
// Status = Pending. Per-item subtotals are computed here and stored.
func (s *OrderStore) CreateOrder(ctx context.Context, order *core.Order) (bool, error) {
	meta, err := storage.MarshalMetadata(order.Metadata)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	err = s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := orderRow{
			OrderID:            order.OrderID,
			CustomerID:         order.CustomerID,
			CustomerName:       order.CustomerName,
			TotalPrice:         order.TotalPrice,
			Status:             string(core.StatusPending),
			CreatedAt:          now,
			UpdatedAt:          now,
			EstimatedReadyTime: order.EstimatedReadyTime,
			ConversationID:     order.ConversationID,
			Metadata:           meta,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isDuplicate(err) {
				return errAlreadyExists
			}
			return err
		}

		items := make([]orderItemRow, len(order.Items))
		for i, item := range order.Items {
			items[i] = orderItemRow{
				OrderID:   order.OrderID,
				ItemName:  item.ItemName,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  core.ItemSubtotal(item.Quantity, item.UnitPrice),
			}
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("create order: %w", err)
	}

	order.Status = core.StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].Subtotal = core.ItemSubtotal(order.Items[i].Quantity, order.Items[i].UnitPrice)
	}
	return true, nil
}

// GetOrder retrieves a complete order with its items in insertion order.
func (s *OrderStore) GetOrder(ctx context.Context, orderID string) (*core.Order, error) {
	var row orderRow
	if err := s.store.db.WithContext(ctx).First(&row, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	order, err := rowToOrder(&row)
	if err != nil {
		return nil, err
	}
	order.Items, err = s.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByCustomer returns a customer's orders, most recent first. Listings
// omit items; use GetOrder for the full order.
func (s *OrderStore) ListByCustomer(ctx context.Context, customerName string, limit int, status core.OrderStatus) ([]*core.Order, error) {
	q := s.store.db.WithContext(ctx).
		Where("customer_name = ?", customerName).
		Order("created_at DESC")
	if status != "" {
		if err := core.ValidateOrderStatus(status); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
		}
		q = q.Where("status = ?", string(status))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []orderRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToOrders(rows)
}

// LastOrder returns the customer's most recent order with items, or
// (nil, nil) when the customer has none.
func (s *OrderStore) LastOrder(ctx context.Context, customerID string) (*core.Order, error) {
	var row orderRow
	err := s.store.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	order, err := rowToOrder(&row)
	if err != nil {
		return nil, err
	}
	order.Items, err = s.loadItems(ctx, order.OrderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus sets the status unconditionally and stamps UpdatedAt.
// Membership is validated; transition legality deliberately is not.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID string, status core.OrderStatus) (bool, error) {
	if err := core.ValidateOrderStatus(status); err != nil {
		return false, err
	}
	res := s.store.db.WithContext(ctx).
		Model(&orderRow{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateReadyTime sets the estimated ready time and stamps UpdatedAt.
func (s *OrderStore) UpdateReadyTime(ctx context.Context, orderID string, readyTime string) (bool, error) {
	res := s.store.db.WithContext(ctx).
		Model(&orderRow{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"estimated_ready_time": readyTime,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByStatus returns orders in FIFO fulfillment order, oldest first.
func (s *OrderStore) ListByStatus(ctx context.Context, status core.OrderStatus, limit int) ([]*core.Order, error) {
	if err := core.ValidateOrderStatus(status); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	q := s.store.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []orderRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToOrders(rows)
}

// Statistics aggregates order counts, revenue, and a per-status breakdown.
func (s *OrderStore) Statistics(ctx context.Context) (*storage.OrderStats, error) {
	db := s.store.db.WithContext(ctx)

	var total int64
	if err := db.Model(&orderRow{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var revenue sql.NullFloat64
	if err := db.Model(&orderRow{}).
		Select("SUM(total_price)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}

	var byStatus []struct {
		Status string
		Count  int
	}
	if err := db.Model(&orderRow{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	breakdown := make(map[core.OrderStatus]int, len(byStatus))
	for _, row := range byStatus {
		breakdown[core.OrderStatus(row.Status)] = row.Count
	}

	var customers int64
	if err := db.Model(&orderRow{}).
		Where("customer_id <> ''").
		Distinct("customer_id").
		Count(&customers).Error; err != nil {
		return nil, err
	}

	return &storage.OrderStats{
		TotalOrders:     int(total),
		TotalRevenue:    core.RoundMoney(revenue.Float64),
		StatusBreakdown: breakdown,
		UniqueCustomers: int(customers),
	}, nil
}

// DeleteOrder removes the order and its items, children first.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	deleted := false
	err := s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&orderItemRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("order_id = ?", orderID).Delete(&orderRow{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ClearAll wipes both order tables.
func (s *OrderStore) ClearAll(ctx context.Context) error {
	return s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM order_items").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM orders").Error
	})
}

// FormatSummary renders the order receipt.
func (s *OrderStore) FormatSummary(ctx context.Context, orderID string) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.OrderNotFound, nil
		}
		return "", err
	}
	return storage.FormatOrderSummary(order), nil
}

// Close closes the shared database handle.
func (s *OrderStore) Close() error {
	return s.store.Close()
}

func (s *OrderStore) loadItems(ctx context.Context, orderID string) ([]core.OrderItem, error) {
	var rows []orderItemRow
	if err := s.store.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]core.OrderItem, len(rows))
	for i, row := range rows {
		items[i] = core.OrderItem{
			ItemName:  row.ItemName,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Subtotal:  row.Subtotal,
		}
	}
	return items, nil
}

func rowToOrder(row *orderRow) (*core.Order, error) {
	meta, err := storage.UnmarshalMetadata(row.Metadata)
	if err != nil {
		return nil, err
	}
	return &core.Order{
		OrderID:            row.OrderID,
		CustomerID:         row.CustomerID,
		CustomerName:       row.CustomerName,
		TotalPrice:         row.TotalPrice,
		Status:             core.OrderStatus(row.Status),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
		EstimatedReadyTime: row.EstimatedReadyTime,
		ConversationID:     row.ConversationID,
		Metadata:           meta,
	}, nil
}

func rowsToOrders(rows []orderRow) ([]*core.Order, error) {
	orders := make([]*core.Order, 0, len(rows))
	for i := range rows {
		order, err := rowToOrder(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
