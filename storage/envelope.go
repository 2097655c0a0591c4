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


package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/poiesic/helpdesk/core"
)

// The serialization envelope is the canonical JSON representation shared
// by every storage adapter: the object store persists these documents
// verbatim, the wide-column store uses them as item values, and the
// relational store uses the metadata encoding for its TEXT columns.
// Timestamps are RFC 3339; monetary fields are decimal strings so that
// repeated read-modify-write cycles cannot drift.

const timeFormat = time.RFC3339Nano

// ConversationDoc is the metadata document for a conversation.
type ConversationDoc struct {
	ID           string        `json:"id"`
	CustomerID   string        `json:"customer_id,omitempty"`
	CustomerName string        `json:"customer_name,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	Metadata     core.Metadata `json:"metadata"`
}

// MessageDoc is one message entry in a message-list document.
type MessageDoc struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Timestamp      string        `json:"timestamp"`
	SenderType     string        `json:"sender_type"`
	SenderName     string        `json:"sender_name,omitempty"`
	Content        string        `json:"content"`
	Metadata       core.Metadata `json:"metadata"`
}

// MessageListDoc is the messages document for a conversation: one JSON
// array holding the conversation's full ordered message sequence.
type MessageListDoc struct {
	Messages []MessageDoc `json:"messages"`
}

// OrderItemDoc is one line item inside an order document.
type OrderItemDoc struct {
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDoc is the document for an order, items inline.
type OrderDoc struct {
	OrderID            string          `json:"order_id"`
	CustomerID         string          `json:"customer_id,omitempty"`
	CustomerName       string          `json:"customer_name,omitempty"`
	Items              []OrderItemDoc  `json:"items"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
	EstimatedReadyTime string          `json:"estimated_ready_time,omitempty"`
	ConversationID     string          `json:"conversation_id,omitempty"`
	Metadata           core.Metadata   `json:"metadata"`
}

// NewConversationDoc converts a conversation to its envelope form.
func NewConversationDoc(conv *core.Conversation) ConversationDoc {
	return ConversationDoc{
		ID:           conv.ID,
		CustomerID:   conv.CustomerID,
		CustomerName: conv.CustomerName,
		CreatedAt:    conv.CreatedAt.Format(timeFormat),
		UpdatedAt:    conv.UpdatedAt.Format(timeFormat),
		Metadata:     ensureMetadata(conv.Metadata),
	}
}

// Conversation converts the envelope form back to the domain model.
func (d *ConversationDoc) Conversation() (*core.Conversation, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &core.Conversation{
		ID:           d.ID,
		CustomerID:   d.CustomerID,
		CustomerName: d.CustomerName,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Metadata:     ensureMetadata(d.Metadata),
	}, nil
}

// NewMessageDoc converts a message to its envelope form.
func NewMessageDoc(msg *core.Message) MessageDoc {
	return MessageDoc{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Timestamp:      msg.Timestamp.Format(timeFormat),
		SenderType:     string(msg.Sender),
		SenderName:     msg.SenderName,
		Content:        msg.Content,
		Metadata:       ensureMetadata(msg.Metadata),
	}
}

// Message converts the envelope form back to the domain model.
func (d *MessageDoc) Message() (*core.Message, error) {
	ts, err := parseTime(d.Timestamp)
	if err != nil {
		return nil, err
	}
	return &core.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		Timestamp:      ts,
		Sender:         core.SenderType(d.SenderType),
		SenderName:     d.SenderName,
		Content:        d.Content,
		Metadata:       ensureMetadata(d.Metadata),
	}, nil
}

// NewOrderDoc converts an order to its envelope form. Monetary fields
// become fixed-point decimals.
func NewOrderDoc(order *core.Order) OrderDoc {
	items := make([]OrderItemDoc, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemDoc{
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			Subtotal:  decimal.NewFromFloat(item.Subtotal),
		}
	}
	return OrderDoc{
		OrderID:            order.OrderID,
		CustomerID:         order.CustomerID,
		CustomerName:       order.CustomerName,
		Items:              items,
		TotalPrice:         decimal.NewFromFloat(order.TotalPrice),
		Status:             string(order.Status),
		CreatedAt:          order.CreatedAt.Format(timeFormat),
		UpdatedAt:          order.UpdatedAt.Format(timeFormat),
		EstimatedReadyTime: order.EstimatedReadyTime,
		ConversationID:     order.ConversationID,
		Metadata:           ensureMetadata(order.Metadata),
	}
}

// Order converts the envelope form back to the domain model.
func (d *OrderDoc) Order() (*core.Order, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	items := make([]core.OrderItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = core.OrderItem{
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			Subtotal:  item.Subtotal.InexactFloat64(),
		}
	}
	return &core.Order{
		OrderID:            d.OrderID,
		CustomerID:         d.CustomerID,
		CustomerName:       d.CustomerName,
		Items:              items,
		TotalPrice:         d.TotalPrice.InexactFloat64(),
		Status:             core.OrderStatus(d.Status),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
		EstimatedReadyTime: d.EstimatedReadyTime,
		ConversationID:     d.ConversationID,
		Metadata:           ensureMetadata(d.Metadata),
	}, nil
}

// MarshalConversation serializes a conversation metadata document.
func MarshalConversation(conv *core.Conversation) ([]byte, error) {
	return marshal(NewConversationDoc(conv))
}

// UnmarshalConversation deserializes a conversation metadata document.
func UnmarshalConversation(data []byte) (*core.Conversation, error) {
	var doc ConversationDoc
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Conversation()
}

// MarshalMessageList serializes a messages document.
func MarshalMessageList(messages []*core.Message) ([]byte, error) {
	doc := MessageListDoc{Messages: make([]MessageDoc, len(messages))}
	for i, msg := range messages {
		doc.Messages[i] = NewMessageDoc(msg)
	}
	return marshal(doc)
}

// UnmarshalMessageList deserializes a messages document.
func UnmarshalMessageList(data []byte) ([]*core.Message, error) {
	var doc MessageListDoc
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	messages := make([]*core.Message, len(doc.Messages))
	for i := range doc.Messages {
		msg, err := doc.Messages[i].Message()
		if err != nil {
			return nil, err
		}
		messages[i] = msg
	}
	return messages, nil
}

// MarshalOrder serializes an order document.
func MarshalOrder(order *core.Order) ([]byte, error) {
	return marshal(NewOrderDoc(order))
}

// UnmarshalOrder deserializes an order document.
func UnmarshalOrder(data []byte) (*core.Order, error) {
	var doc OrderDoc
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Order()
}

// MarshalMetadata encodes a metadata map for TEXT column storage.
// Nil maps encode as the empty object.
func MarshalMetadata(meta core.Metadata) (string, error) {
	data, err := marshal(ensureMetadata(meta))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalMetadata decodes a metadata map from TEXT column storage.
// Empty input decodes as an empty map.
func UnmarshalMetadata(raw string) (core.Metadata, error) {
	if raw == "" {
		return core.Metadata{}, nil
	}
	var meta core.Metadata
	if err := unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return ensureMetadata(meta), nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return nil
}

func parseTime(raw string) (time.Time, error) {
	ts, err := time.Parse(timeFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q: %w", ErrSerializationFailed, raw, err)
	}
	return ts, nil
}

func ensureMetadata(meta core.Metadata) core.Metadata {
	if meta == nil {
		return core.Metadata{}
	}
	return meta
}
