package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/helpdesk/ai"
)

func TestMockResponderImplementsInterface(t *testing.T) {
	var _ ai.Responder = NewMockResponder()
}

func TestMockResponderCannedReply(t *testing.T) {
	m := NewMockResponder().WithReply("hello from support")

	reply, err := m.Respond(context.Background(), "where is my order?")
	require.NoError(t, err)
	assert.Equal(t, "hello from support", reply)

	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, []string{"where is my order?"}, m.Prompts())
}

func TestMockResponderRespondFunc(t *testing.T) {
	wantErr := errors.New("upstream unavailable")
	m := NewMockResponder().WithRespondFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", wantErr
	})

	_, err := m.Respond(context.Background(), "hi")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockResponderCloseAndReset(t *testing.T) {
	m := NewMockResponder()

	_, err := m.Respond(context.Background(), "one")
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.True(t, m.Closed())
	assert.Equal(t, 1, m.CallCount())

	m.Reset()
	assert.False(t, m.Closed())
	assert.Equal(t, 0, m.CallCount())
}
