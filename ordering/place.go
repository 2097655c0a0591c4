// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ordering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

const readyEstimate = 15 * time.Minute

// Service places orders against a menu and answers status queries.
type Service struct {
	orders storage.OrderStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order ID generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates an ordering service on top of an order store.
func NewService(orders storage.OrderStore, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		logger: slog.Default().With("component", "ordering"),
		now:    time.Now,
		newID:  defaultOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultOrderID generates a short order reference suitable for reading
// back to a customer.
func defaultOrderID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// ItemRequest is one requested line item: what and how many. The unit
// price comes from the menu, never from the caller.
type ItemRequest struct {
	ItemName string
	Quantity int
}

// Confirmation summarizes a successfully placed order.
type Confirmation struct {
	OrderID            string
	CustomerName       string
	Items              []core.OrderItem
	TotalPrice         float64
	Status             core.OrderStatus
	EstimatedReadyTime string
	Message            string
}

// PlaceOrder validates the request against the menu and persists the
// order. All request problems are collected into one ValidationErrors
// so the caller can report every issue at once.
func (s *Service) PlaceOrder(ctx context.Context, customerName string, items []ItemRequest) (*Confirmation, error) {
	var violations core.ValidationErrors
	if strings.TrimSpace(customerName) == "" {
		violations = append(violations, "customer name is required")
	}
	if len(items) == 0 {
		violations = append(violations, "at least one item must be ordered")
	}

	var orderItems []core.OrderItem
	for _, req := range items {
		name := strings.TrimSpace(req.ItemName)
		if name == "" {
			violations = append(violations, "empty item name provided")
			continue
		}
		if req.Quantity <= 0 {
			violations = append(violations, fmt.Sprintf("invalid quantity for %q, quantity must be a positive integer", name))
			continue
		}
		price, ok := MenuPrice(name)
		if !ok {
			violations = append(violations, fmt.Sprintf("'%s' is not available in the menu", name))
			continue
		}
		orderItems = append(orderItems, core.OrderItem{
			ItemName:  name,
			Quantity:  req.Quantity,
			UnitPrice: price,
		})
	}
	if len(violations) > 0 {
		return nil, violations
	}

	order := &core.Order{
		OrderID:            s.newID(),
		CustomerName:       customerName,
		Items:              orderItems,
		TotalPrice:         core.OrderTotal(orderItems),
		EstimatedReadyTime: s.now().Add(readyEstimate).Format(time.RFC3339),
		Metadata: core.Metadata{
			"source":   "place_order_tool",
			"platform": "support_assistant",
		},
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("order id %s already in use", order.OrderID)
	}

	s.logger.Info("order placed",
		"order_id", order.OrderID,
		"customer_name", customerName,
		"total_price", order.TotalPrice)

	return &Confirmation{
		OrderID:            order.OrderID,
		CustomerName:       customerName,
		Items:              order.Items,
		TotalPrice:         order.TotalPrice,
		Status:             order.Status,
		EstimatedReadyTime: order.EstimatedReadyTime,
		Message: fmt.Sprintf("Order %s has been successfully placed! Your order will be ready in approximately 15 minutes.",
			order.OrderID),
	}, nil
}
