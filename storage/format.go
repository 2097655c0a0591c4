package storage

import (
	"fmt"
	"strings"

	"github.com/poiesic/helpdesk/core"
)

// NoHistory is returned by FormatHistory for a conversation with no
// messages. Callers feed it to the agent verbatim.
const NoHistory = "No conversation history."

// OrderNotFound is returned by FormatSummary for a missing order.
const OrderNotFound = "Order not found."

// FormatHistory renders messages as "SENDER: content" lines for agent
// context. The sender name is used when present, otherwise the upper-cased
// sender type. Shared by every conversation adapter.
func FormatHistory(messages []*core.Message) string {
	if len(messages) == 0 {
		return NoHistory
	}
	var b strings.Builder
	b.WriteString("CONVERSATION HISTORY:\n")
	for _, msg := range messages {
		sender := msg.SenderName
		if sender == "" {
			sender = strings.ToUpper(string(msg.Sender))
		}
		fmt.Fprintf(&b, "%s: %s\n", sender, msg.Content)
	}
	return b.String()
}

// FormatOrderSummary renders an order as a readable receipt. Shared by
// every order adapter.
func FormatOrderSummary(order *core.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nORDER #%s\n", order.OrderID)
	fmt.Fprintf(&b, "Customer: %s (ID: %s)\n", order.CustomerName, order.CustomerID)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Created: %s\n", order.CreatedAt.Format(timeFormat))
	b.WriteString("\nItems:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  - %s x%d @ $%.2f = $%.2f\n",
			item.ItemName, item.Quantity, item.UnitPrice, item.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f", order.TotalPrice)
	if order.EstimatedReadyTime != "" {
		fmt.Fprintf(&b, "\nEstimated Ready: %s", order.EstimatedReadyTime)
	}
	return b.String()
}
