package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

// OrderStore implements storage.OrderStore for BadgerDB. Each order is
// one item keyed by ID, with three secondary index families (customer
// name, customer ID, status) whose composite keys carry a creation
// sequence number so prefix iteration yields creation order.
type OrderStore struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.OrderStore = (*OrderStore)(nil)

// orderRecord is the stored item value: the order document plus the
// creation sequence number the index keys were built from.
type orderRecord struct {
	Seq   uint64           `json:"seq"`
	Order storage.OrderDoc `json:"order"`
}

// NewOrderStore creates an order store on backend.
func NewOrderStore(backend *Backend) (*OrderStore, error) {
	idSeq, err := backend.GetSequence(orderIDSeq)
	if err != nil {
		return nil, err
	}
	return &OrderStore{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the creation sequence.
func (s *OrderStore) Close() error {
	return s.idSeq.Release()
}

// CreateOrder writes the order item and its three index entries in one
// transaction with Status = Pending. Per-item subtotals are computed
// here and stored.
func (s *OrderStore) CreateOrder(ctx context.Context, order *core.Order) (bool, error) {
	if order.OrderID == "" {
		return false, core.ErrEmptyOrderID
	}

	created := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOrderKey(order.OrderID)
		existing, err := readOrderRecord(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		seq, err := s.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if seq == 0 {
			seq, err = s.idSeq.Next()
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order.Status = core.StatusPending
		order.CreatedAt = now
		order.UpdatedAt = now
		for i := range order.Items {
			order.Items[i].Subtotal = core.ItemSubtotal(order.Items[i].Quantity, order.Items[i].UnitPrice)
		}

		rec := &orderRecord{Seq: seq, Order: storage.NewOrderDoc(order)}
		if err := writeOrderRecord(tx, key, rec); err != nil {
			return err
		}

		idVal := []byte(order.OrderID)
		if err := tx.Set(makeCustomerKey(order.CustomerName, seq, order.OrderID), idVal); err != nil {
			return err
		}
		if err := tx.Set(makeCustomerIDKey(order.CustomerID, seq, order.OrderID), idVal); err != nil {
			return err
		}
		if err := tx.Set(makeStatusKey(order.Status, seq, order.OrderID), idVal); err != nil {
			return err
		}

		created = true
		return tx.Commit()
	}, true)

	return created, err
}

// GetOrder retrieves a complete order by ID.
func (s *OrderStore) GetOrder(ctx context.Context, orderID string) (*core.Order, error) {
	var result *core.Order
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		rec, err := readOrderRecord(tx, makeOrderKey(orderID))
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrNotFound
		}
		result, err = rec.Order.Order()
		return err
	}, false)
	return result, err
}

// ListByCustomer returns a customer's orders by name, most recent first.
// The index is walked in reverse so creation order becomes newest-first
// without a sort.
func (s *OrderStore) ListByCustomer(ctx context.Context, customerName string, limit int, status core.OrderStatus) ([]*core.Order, error) {
	if status != "" {
		if err := core.ValidateOrderStatus(status); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
		}
	}

	var results []*core.Order
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialIndexKey(orderCustomerPrefix, customerName)
		ids, err := collectIndex(tx, prefix, true, 0)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if limit > 0 && len(results) >= limit {
				break
			}
			rec, err := readOrderRecord(tx, makeOrderKey(id))
			if err != nil {
				return err
			}
			if rec == nil {
				continue
			}
			if status != "" && rec.Order.Status != string(status) {
				continue
			}
			order, err := rec.Order.Order()
			if err != nil {
				return err
			}
			results = append(results, order)
		}
		return nil
	}, false)
	return results, err
}

// LastOrder returns the customer's most recent order by ID, or
// (nil, nil) when the customer has none.
func (s *OrderStore) LastOrder(ctx context.Context, customerID string) (*core.Order, error) {
	var result *core.Order
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialIndexKey(orderCustomerIDIndex, customerID)
		ids, err := collectIndex(tx, prefix, true, 1)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rec, err := readOrderRecord(tx, makeOrderKey(ids[0]))
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		result, err = rec.Order.Order()
		return err
	}, false)
	return result, err
}

// UpdateStatus sets the status unconditionally, moving the status index
// entry and stamping UpdatedAt. Membership is validated; transition
// legality deliberately is not.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID string, status core.OrderStatus) (bool, error) {
	if err := core.ValidateOrderStatus(status); err != nil {
		return false, err
	}

	updated := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOrderKey(orderID)
		rec, err := readOrderRecord(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		oldStatus := core.OrderStatus(rec.Order.Status)
		if oldStatus != status {
			if err := tx.Delete(makeStatusKey(oldStatus, rec.Seq, orderID)); err != nil {
				return err
			}
			if err := tx.Set(makeStatusKey(status, rec.Seq, orderID), []byte(orderID)); err != nil {
				return err
			}
		}

		rec.Order.Status = string(status)
		rec.Order.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
		if err := writeOrderRecord(tx, key, rec); err != nil {
			return err
		}

		updated = true
		return tx.Commit()
	}, true)
	return updated, err
}

// UpdateReadyTime sets the estimated ready time and stamps UpdatedAt.
func (s *OrderStore) UpdateReadyTime(ctx context.Context, orderID string, readyTime string) (bool, error) {
	updated := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOrderKey(orderID)
		rec, err := readOrderRecord(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		rec.Order.EstimatedReadyTime = readyTime
		rec.Order.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
		if err := writeOrderRecord(tx, key, rec); err != nil {
			return err
		}

		updated = true
		return tx.Commit()
	}, true)
	return updated, err
}

// ListByStatus returns orders in FIFO fulfillment order, oldest first.
func (s *OrderStore) ListByStatus(ctx context.Context, status core.OrderStatus, limit int) ([]*core.Order, error) {
	if err := core.ValidateOrderStatus(status); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var results []*core.Order
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialIndexKey(orderStatusPrefix, string(status))
		ids, err := collectIndex(tx, prefix, false, limit)
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := readOrderRecord(tx, makeOrderKey(id))
			if err != nil {
				return err
			}
			if rec == nil {
				continue
			}
			order, err := rec.Order.Order()
			if err != nil {
				return err
			}
			results = append(results, order)
		}
		return nil
	}, false)
	return results, err
}

// Statistics aggregates counts, revenue, and a per-status breakdown by
// scanning the primary key family. Revenue sums the stored decimals so
// floating-point accumulation cannot drift.
func (s *OrderStore) Statistics(ctx context.Context) (*storage.OrderStats, error) {
	stats := &storage.OrderStats{
		StatusBreakdown: make(map[core.OrderStatus]int),
	}
	revenue := decimal.Zero
	customers := make(map[string]struct{})

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(orderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec orderRecord
			if err := iter.Item().Value(func(val []byte) error {
				return unmarshalOrderRecord(val, &rec)
			}); err != nil {
				return err
			}

			stats.TotalOrders++
			stats.StatusBreakdown[core.OrderStatus(rec.Order.Status)]++
			revenue = revenue.Add(rec.Order.TotalPrice)
			if rec.Order.CustomerID != "" {
				customers[rec.Order.CustomerID] = struct{}{}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	stats.TotalRevenue = revenue.Round(2).InexactFloat64()
	stats.UniqueCustomers = len(customers)
	return stats, nil
}

// DeleteOrder removes the order item and its index entries.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	deleted := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOrderKey(orderID)
		rec, err := readOrderRecord(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		if err := tx.Delete(makeCustomerKey(rec.Order.CustomerName, rec.Seq, orderID)); err != nil {
			return err
		}
		if err := tx.Delete(makeCustomerIDKey(rec.Order.CustomerID, rec.Seq, orderID)); err != nil {
			return err
		}
		if err := tx.Delete(makeStatusKey(core.OrderStatus(rec.Order.Status), rec.Seq, orderID)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}

		deleted = true
		return tx.Commit()
	}, true)
	return deleted, err
}

// ClearAll deletes every order item and index entry. The sequence key is
// preserved so IDs issued after a clear keep ascending.
func (s *OrderStore) ClearAll(ctx context.Context) error {
	var keys [][]byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		seqKey := []byte(orderIDSeq)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			if bytes.Equal(key, seqKey) {
				continue
			}
			if !bytes.HasPrefix(key, []byte(orderPrefix)) &&
				!bytes.HasPrefix(key, []byte(orderCustomerPrefix)) &&
				!bytes.HasPrefix(key, []byte(orderCustomerIDIndex)) &&
				!bytes.HasPrefix(key, []byte(orderStatusPrefix)) {
				continue
			}
			keys = append(keys, key)
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FormatSummary renders the order receipt.
func (s *OrderStore) FormatSummary(ctx context.Context, orderID string) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		if err == storage.ErrNotFound {
			return storage.OrderNotFound, nil
		}
		return "", err
	}
	return storage.FormatOrderSummary(order), nil
}

// Helper functions

// collectIndex walks one index term and returns the referenced order
// IDs. reverse yields newest-first; limit <= 0 means no limit.
func collectIndex(tx *badger.Txn, prefix []byte, reverse bool, limit int) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.PrefetchValues = false

	iter := tx.NewIterator(opts)
	defer iter.Close()

	seek := prefix
	if reverse {
		// Position past the last key of the prefix range.
		seek = append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	}

	var ids []string
	for iter.Seek(seek); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		if len(key) <= len(prefix)+8 {
			continue
		}
		ids = append(ids, string(key[len(prefix)+8:]))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// readOrderRecord reads an order record, returning nil when absent.
func readOrderRecord(tx *badger.Txn, key []byte) (*orderRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var rec orderRecord
	if err := item.Value(func(val []byte) error {
		return unmarshalOrderRecord(val, &rec)
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

func writeOrderRecord(tx *badger.Txn, key []byte, rec *orderRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return tx.Set(key, data)
}

func unmarshalOrderRecord(val []byte, rec *orderRecord) error {
	if err := json.Unmarshal(val, rec); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return nil
}
