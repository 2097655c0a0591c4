package blob

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/gcerrors"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

// CreateConversation writes the metadata document and an empty messages
// document. Existence is probed first; there is no conditional-put, so
// two simultaneous creates of the same ID can both report success.
func (s *ConversationStore) CreateConversation(ctx context.Context, conv *core.Conversation) (bool, error) {
	if conv.ID == "" {
		return false, core.ErrEmptyConversationID
	}

	exists, err := s.bucket.Exists(ctx, s.metadataKey(conv.ID))
	if err != nil {
		return false, fmt.Errorf("%w: head %s: %w", storage.ErrBackendUnavailable, s.metadataKey(conv.ID), err)
	}
	if exists {
		return false, nil
	}

	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	meta, err := storage.MarshalConversation(conv)
	if err != nil {
		return false, err
	}
	msgs, err := storage.MarshalMessageList(nil)
	if err != nil {
		return false, err
	}

	if err := s.saveDoc(ctx, s.metadataKey(conv.ID), meta); err != nil {
		return false, err
	}
	if err := s.saveDoc(ctx, s.messagesKey(conv.ID), msgs); err != nil {
		return false, err
	}

	s.logger.Debug("conversation created", "conversation_id", conv.ID)
	return true, nil
}

// AddMessage appends to the messages document via read-modify-write.
// A missing messages document is treated as an implicit empty list, so
// appending to an unknown conversation succeeds here where the
// relational backend would report ErrNotFound.
func (s *ConversationStore) AddMessage(ctx context.Context, msg *core.Message) (string, error) {
	if err := core.ValidateMessage(msg); err != nil {
		return "", err
	}

	messages, err := s.loadMessages(ctx, msg.ConversationID)
	if err != nil {
		return "", err
	}

	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC()
	messages = append(messages, msg)

	data, err := storage.MarshalMessageList(messages)
	if err != nil {
		return "", err
	}
	if err := s.saveDoc(ctx, s.messagesKey(msg.ConversationID), data); err != nil {
		return "", err
	}

	if err := s.touchConversation(ctx, msg.ConversationID, msg.Timestamp); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// touchConversation bumps the metadata document's UpdatedAt. A missing
// metadata document is skipped to stay consistent with the implicit
// message list.
func (s *ConversationStore) touchConversation(ctx context.Context, conversationID string, at time.Time) error {
	data, err := s.loadDoc(ctx, s.metadataKey(conversationID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	conv, err := storage.UnmarshalConversation(data)
	if err != nil {
		return err
	}
	conv.UpdatedAt = at
	updated, err := storage.MarshalConversation(conv)
	if err != nil {
		return err
	}
	return s.saveDoc(ctx, s.metadataKey(conversationID), updated)
}

func (s *ConversationStore) loadMessages(ctx context.Context, conversationID string) ([]*core.Message, error) {
	if conversationID == "" {
		return nil, core.ErrEmptyConversationID
	}
	data, err := s.loadDoc(ctx, s.messagesKey(conversationID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return storage.UnmarshalMessageList(data)
}

// GetConversation retrieves the metadata document.
func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*core.Conversation, error) {
	if id == "" {
		return nil, core.ErrEmptyConversationID
	}
	data, err := s.loadDoc(ctx, s.metadataKey(id))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalConversation(data)
}

// ListMessages returns the conversation's messages in stored order,
// which is append order. An unknown conversation yields an empty slice.
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*core.Message, error) {
	messages, err := s.loadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		if offset >= len(messages) {
			return nil, nil
		}
		messages = messages[offset:]
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// RecentMessages returns the last limit messages, oldest of the window
// first.
func (s *ConversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]*core.Message, error) {
	messages, err := s.loadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// ListByCustomer scans every metadata document under the prefix and
// filters by customer ID. Fetches fan out over the worker pool.
func (s *ConversationStore) ListByCustomer(ctx context.Context, customerID string) ([]*core.Conversation, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		matches []*core.Conversation
	)
	err = s.fanOut(metadataKeys(keys), func(key string) error {
		data, err := s.loadDoc(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			return err
		}
		conv, err := storage.UnmarshalConversation(data)
		if err != nil {
			return err
		}
		if conv.CustomerID != customerID {
			return nil
		}
		mu.Lock()
		matches = append(matches, conv)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	return matches, nil
}

// FormatHistory renders the last limit messages for agent context.
func (s *ConversationStore) FormatHistory(ctx context.Context, conversationID string, limit int) (string, error) {
	messages, err := s.RecentMessages(ctx, conversationID, limit)
	if err != nil {
		return "", err
	}
	return storage.FormatHistory(messages), nil
}

// DeleteConversation removes both documents. Existence is decided by the
// metadata document.
func (s *ConversationStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, core.ErrEmptyConversationID
	}

	exists, err := s.bucket.Exists(ctx, s.metadataKey(id))
	if err != nil {
		return false, fmt.Errorf("%w: head %s: %w", storage.ErrBackendUnavailable, s.metadataKey(id), err)
	}
	if !exists {
		return false, nil
	}

	for _, key := range []string{s.metadataKey(id), s.messagesKey(id)} {
		if err := s.bucket.Delete(ctx, key); err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				continue
			}
			return false, fmt.Errorf("%w: delete %s: %w", storage.ErrBackendUnavailable, key, err)
		}
	}
	s.logger.Debug("conversation deleted", "conversation_id", id)
	return true, nil
}

// ClearAll deletes every document under the prefix.
func (s *ConversationStore) ClearAll(ctx context.Context) error {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return err
	}
	err = s.fanOut(keys, func(key string) error {
		if err := s.bucket.Delete(ctx, key); err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				return nil
			}
			return fmt.Errorf("%w: delete %s: %w", storage.ErrBackendUnavailable, key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("conversation store cleared", "deleted_objects", len(keys))
	return nil
}

// Statistics aggregates by fetching every document under the prefix.
func (s *ConversationStore) Statistics(ctx context.Context) (*storage.ConversationStats, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		stats     storage.ConversationStats
		customers = make(map[string]struct{})
	)
	err = s.fanOut(keys, func(key string) error {
		data, err := s.loadDoc(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			return err
		}
		switch {
		case isMetadataKey(key):
			conv, err := storage.UnmarshalConversation(data)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.TotalConversations++
			if conv.CustomerID != "" {
				customers[conv.CustomerID] = struct{}{}
			}
			mu.Unlock()
		case isMessagesKey(key):
			messages, err := storage.UnmarshalMessageList(data)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.TotalMessages += len(messages)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.UniqueCustomers = len(customers)
	return &stats, nil
}
