package core

import "time"

// SenderType identifies the source of a conversation message.
type SenderType string

const (
	// SenderUser represents the customer.
	SenderUser SenderType = "user"
	// SenderAgent represents the assistant.
	SenderAgent SenderType = "agent"
	// SenderSystem represents system-generated messages.
	SenderSystem SenderType = "system"
)

// OrderStatus is the lifecycle state of an order.
// Pending is the initial state; Completed and Cancelled are terminal.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusPreparing OrderStatus = "Being prepared"
	StatusReady     OrderStatus = "Ready for pickup"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists all valid statuses in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusCompleted,
		StatusCancelled,
	}
}

// Terminal reports whether the status is an end state. Stores do not
// enforce transition legality; a terminal order can still be moved to
// any other status by UpdateStatus.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Metadata is an opaque JSON-compatible key-value map attached to
// conversations, messages, and orders.
type Metadata map[string]any

// Conversation is a customer interaction session containing an ordered
// list of messages. Timestamps are backend-assigned; UpdatedAt is bumped
// on every message append and never precedes CreatedAt.
type Conversation struct {
	ID           string
	CustomerID   string
	CustomerName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Metadata     Metadata
}

// Message is one turn in a conversation. Messages are immutable once
// created; they are only removed when their conversation is deleted.
// ID is backend-assigned: a formatted rowid for relational backends,
// a UUID for object-store backends.
type Message struct {
	ID             string
	ConversationID string
	Timestamp      time.Time
	Sender         SenderType
	SenderName     string
	Content        string
	Metadata       Metadata
}

// OrderItem is one line of an order. Subtotal is Quantity * UnitPrice,
// computed and stored at creation time.
type OrderItem struct {
	ItemName  string
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

// Order is a placed purchase with line items, a monetary total, and a
// status. Only Status and EstimatedReadyTime are mutable after creation.
// ConversationID is a non-owning back-reference used for lookup only.
type Order struct {
	OrderID            string
	CustomerID         string
	CustomerName       string
	Items              []OrderItem
	TotalPrice         float64
	Status             OrderStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
	EstimatedReadyTime string // RFC 3339, empty when not set
	ConversationID     string
	Metadata           Metadata
}
