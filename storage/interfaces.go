package storage

import (
	"context"

	"github.com/poiesic/helpdesk/core"
)

// ConversationStats summarizes a conversation store.
type ConversationStats struct {
	TotalConversations int
	TotalMessages      int
	UniqueCustomers    int
}

// OrderStats summarizes an order store. TotalRevenue is rounded to
// 2 decimal places.
type OrderStats struct {
	TotalOrders     int
	TotalRevenue    float64
	StatusBreakdown map[core.OrderStatus]int
	UniqueCustomers int
}

// ConversationStore provides operations for managing conversations and
// their ordered messages. All implementations satisfy the same behavioral
// contract regardless of backend; documented per-backend divergences are
// called out on the affected operations.
type ConversationStore interface {
	// CreateConversation persists a new conversation with
	// CreatedAt = UpdatedAt = now. The conversation's ID, CustomerID,
	// CustomerName, and Metadata are taken from conv; timestamps are
	// stamped by the store. Returns (false, nil) if the ID is already
	// in use; callers must treat false as "already exists", not failure.
	CreateConversation(ctx context.Context, conv *core.Conversation) (bool, error)

	// AddMessage appends msg to the conversation's ordered message
	// sequence, stamps msg.Timestamp = now, and bumps the parent
	// conversation's UpdatedAt. Returns the backend-assigned message ID.
	//
	// Backend divergence: relational backends return ErrNotFound when the
	// conversation does not exist (enforced referentially); the
	// object-store backend is permissive and appends to an implicit empty
	// message list instead.
	AddMessage(ctx context.Context, msg *core.Message) (string, error)

	// GetConversation retrieves a conversation by ID.
	// Returns ErrNotFound if it does not exist.
	GetConversation(ctx context.Context, id string) (*core.Conversation, error)

	// ListMessages returns the conversation's messages in ascending
	// timestamp order (append order breaks ties). limit <= 0 means no
	// limit; offset applies after ordering.
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*core.Message, error)

	// RecentMessages returns the last limit messages in ascending order,
	// oldest of the window first.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]*core.Message, error)

	// ListByCustomer returns the customer's conversations ordered by
	// UpdatedAt descending.
	ListByCustomer(ctx context.Context, customerID string) ([]*core.Conversation, error)

	// FormatHistory renders the last limit messages as "SENDER: content"
	// lines for agent context, or "No conversation history." when there
	// are none.
	FormatHistory(ctx context.Context, conversationID string, limit int) (string, error)

	// DeleteConversation removes the conversation and all its messages.
	// Returns (false, nil) if the conversation does not exist.
	DeleteConversation(ctx context.Context, id string) (bool, error)

	// ClearAll deletes every conversation and message. Destructive;
	// intended for operational tooling only.
	ClearAll(ctx context.Context) error

	// Statistics reports store-wide counts. Backends without native
	// aggregates serve this with a full scan.
	Statistics(ctx context.Context) (*ConversationStats, error)

	// Close releases backend resources.
	Close() error
}

// OrderStore provides operations for managing orders and their line items.
type OrderStore interface {
	// CreateOrder persists order with Status = Pending and
	// CreatedAt = UpdatedAt = now, computing and storing per-item
	// subtotals. The order's identifying fields, items, total, and
	// optional metadata are taken from order. Returns (false, nil) if
	// the order ID is already in use.
	CreateOrder(ctx context.Context, order *core.Order) (bool, error)

	// GetOrder retrieves a complete order including items.
	// Returns ErrNotFound if it does not exist.
	GetOrder(ctx context.Context, orderID string) (*core.Order, error)

	// ListByCustomer returns the customer's orders by name, ordered by
	// CreatedAt descending (most recent first). status restricts results
	// to one status when non-empty; limit <= 0 means no limit.
	ListByCustomer(ctx context.Context, customerName string, limit int, status core.OrderStatus) ([]*core.Order, error)

	// LastOrder returns the customer's most recent order by CreatedAt,
	// or (nil, nil) when the customer has no orders.
	LastOrder(ctx context.Context, customerID string) (*core.Order, error)

	// UpdateStatus sets the order's status and stamps UpdatedAt.
	// Membership in the status enumeration is validated; transition
	// legality is intentionally NOT enforced: any target status is
	// accepted from any current status, including terminal ones.
	// Returns (false, nil) if the order does not exist.
	UpdateStatus(ctx context.Context, orderID string, status core.OrderStatus) (bool, error)

	// UpdateReadyTime sets the order's estimated ready time (RFC 3339)
	// and stamps UpdatedAt. Returns (false, nil) if the order does not
	// exist.
	UpdateReadyTime(ctx context.Context, orderID string, readyTime string) (bool, error)

	// ListByStatus returns orders with the given status ordered by
	// CreatedAt ascending, oldest first for FIFO fulfillment. This is
	// intentionally the opposite direction from ListByCustomer.
	ListByStatus(ctx context.Context, status core.OrderStatus, limit int) ([]*core.Order, error)

	// Statistics reports store-wide aggregates via a full scan on
	// backends without native aggregation.
	Statistics(ctx context.Context) (*OrderStats, error)

	// DeleteOrder removes the order and its items.
	// Returns (false, nil) if the order does not exist.
	DeleteOrder(ctx context.Context, orderID string) (bool, error)

	// ClearAll deletes every order and item. Destructive; intended for
	// operational tooling only.
	ClearAll(ctx context.Context) error

	// FormatSummary renders a human-readable receipt for the order, or
	// "Order not found." when it does not exist.
	FormatSummary(ctx context.Context, orderID string) (string, error)

	// Close releases backend resources.
	Close() error
}
