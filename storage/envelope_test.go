package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/helpdesk/core"
)

func TestConversationRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	conv := &core.Conversation{
		ID:           "conv-1",
		CustomerID:   "cust-42",
		CustomerName: "Dana",
		CreatedAt:    now,
		UpdatedAt:    now.Add(5 * time.Minute),
		Metadata:     core.Metadata{"channel": "web"},
	}

	data, err := MarshalConversation(conv)
	require.NoError(t, err)

	got, err := UnmarshalConversation(data)
	require.NoError(t, err)

	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, conv.CustomerID, got.CustomerID)
	assert.Equal(t, conv.CustomerName, got.CustomerName)
	assert.True(t, conv.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, conv.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, "web", got.Metadata["channel"])
}

func TestMessageListRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	messages := []*core.Message{
		{
			ID:             "m1",
			ConversationID: "conv-1",
			Timestamp:      now,
			Sender:         core.SenderUser,
			SenderName:     "Dana",
			Content:        "Where is my order?",
		},
		{
			ID:             "m2",
			ConversationID: "conv-1",
			Timestamp:      now.Add(time.Second),
			Sender:         core.SenderAgent,
			Content:        "Let me check.",
			Metadata:       core.Metadata{"model": "local"},
		},
	}

	data, err := MarshalMessageList(messages)
	require.NoError(t, err)

	got, err := UnmarshalMessageList(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, core.SenderUser, got[0].Sender)
	assert.Equal(t, "Where is my order?", got[0].Content)
	assert.True(t, messages[1].Timestamp.Equal(got[1].Timestamp))
	// Nil metadata decodes as an empty map, never nil
	assert.NotNil(t, got[0].Metadata)
}

func TestEmptyMessageListRoundTrip(t *testing.T) {
	data, err := MarshalMessageList(nil)
	require.NoError(t, err)

	got, err := UnmarshalMessageList(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOrderRoundTripKeepsMoneyExact(t *testing.T) {
	now := time.Now().UTC()
	order := &core.Order{
		OrderID:      "A1B2C3D4",
		CustomerID:   "cust-42",
		CustomerName: "Dana",
		Items: []core.OrderItem{
			{ItemName: "Coffee", Quantity: 2, UnitPrice: 3.50, Subtotal: 7.00},
			{ItemName: "Sandwich", Quantity: 1, UnitPrice: 8.99, Subtotal: 8.99},
		},
		TotalPrice:         15.99,
		Status:             core.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
		EstimatedReadyTime: now.Add(15 * time.Minute).Format(time.RFC3339),
	}

	got := order
	// Several read-modify-write cycles must not drift the money fields.
	for i := 0; i < 10; i++ {
		data, err := MarshalOrder(got)
		require.NoError(t, err)
		got, err = UnmarshalOrder(data)
		require.NoError(t, err)
	}

	assert.Equal(t, 15.99, got.TotalPrice)
	assert.Equal(t, 3.50, got.Items[0].UnitPrice)
	assert.Equal(t, 7.00, got.Items[0].Subtotal)
	assert.Equal(t, 8.99, got.Items[1].Subtotal)
	assert.Equal(t, core.StatusPending, got.Status)
	assert.Equal(t, order.EstimatedReadyTime, got.EstimatedReadyTime)
}

func TestUnmarshalMalformedDocument(t *testing.T) {
	_, err := UnmarshalConversation([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalOrder([]byte(`{"order_id":"x","created_at":"not-a-time","updated_at":"also-bad"}`))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMetadataTextRoundTrip(t *testing.T) {
	raw, err := MarshalMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)

	meta, err := UnmarshalMetadata("")
	require.NoError(t, err)
	assert.NotNil(t, meta)
	assert.Empty(t, meta)

	raw, err = MarshalMetadata(core.Metadata{"source": "web", "priority": float64(2)})
	require.NoError(t, err)
	meta, err = UnmarshalMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, "web", meta["source"])
	assert.Equal(t, float64(2), meta["priority"])

	_, err = UnmarshalMetadata("{broken")
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
