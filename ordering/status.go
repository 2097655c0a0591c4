package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/helpdesk/core"
)

// StatusReport answers "where is my order" for a customer's most recent
// order. Found is false when the customer has no orders; that is not an
// error.
type StatusReport struct {
	Found         bool
	OrderID       string
	CustomerName  string
	Status        core.OrderStatus
	EstimatedTime string
	TotalPrice    float64
	ItemsCount    int
	Message       string
}

// OrderStatus reports on the customer's most recent order by name.
func (s *Service) OrderStatus(ctx context.Context, customerName string) (*StatusReport, error) {
	recent, err := s.orders.ListByCustomer(ctx, customerName, 1, "")
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return &StatusReport{
			Found:   false,
			Message: fmt.Sprintf("No orders found for customer: %s", customerName),
		}, nil
	}

	// Listings may omit items; fetch the full order.
	order, err := s.orders.GetOrder(ctx, recent[0].OrderID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		Found:         true,
		OrderID:       order.OrderID,
		CustomerName:  order.CustomerName,
		Status:        order.Status,
		EstimatedTime: s.estimateRemaining(order.EstimatedReadyTime),
		TotalPrice:    order.TotalPrice,
		ItemsCount:    len(order.Items),
	}, nil
}

// estimateRemaining turns an absolute ready time into customer-facing
// wording.
func (s *Service) estimateRemaining(readyTime string) string {
	if readyTime == "" {
		return "Unknown"
	}
	ready, err := time.Parse(time.RFC3339, readyTime)
	if err != nil {
		return "Unknown"
	}

	remaining := ready.Sub(s.now())
	if remaining <= 0 {
		return "Ready for pickup"
	}
	minutes := int(remaining.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return "Ready now"
}
