package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/poiesic/helpdesk/core"
	"github.com/poiesic/helpdesk/storage"
)

// ConversationStore implements storage.ConversationStore on SQLite.
// Every contract operation runs as one short transaction; parent and
// child rows are never visible in a partially written state.
type ConversationStore struct {
	store *Store
}

var _ storage.ConversationStore = (*ConversationStore)(nil)

// CreateConversation persists a new conversation. A duplicate primary
// key is converted to the (false, nil) already-exists signal.
func (s *ConversationStore) CreateConversation(ctx context.Context, conv *core.Conversation) (bool, error) {
	meta, err := storage.MarshalMetadata(conv.Metadata)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	row := conversationRow{
		ID:           conv.ID,
		CustomerID:   conv.CustomerID,
		CustomerName: conv.CustomerName,
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     meta,
	}
	if err := s.store.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("create conversation: %w", err)
	}

	conv.CreatedAt = now
	conv.UpdatedAt = now
	return true, nil
}

// AddMessage appends a message and bumps the parent's UpdatedAt in the
// same transaction. The conversation must exist; the foreign key backs
// this up, but the explicit check gives the caller ErrNotFound instead
// of a constraint violation.
func (s *ConversationStore) AddMessage(ctx context.Context, msg *core.Message) (string, error) {
	if err := core.ValidateMessage(msg); err != nil {
		return "", err
	}
	meta, err := storage.MarshalMetadata(msg.Metadata)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	var messageID int64
	err = s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv conversationRow
		if err := tx.Select("id").First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		row := messageRow{
			ConversationID: msg.ConversationID,
			Timestamp:      now,
			SenderType:     string(msg.Sender),
			SenderName:     msg.SenderName,
			Content:        msg.Content,
			Metadata:       meta,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		messageID = row.ID

		return tx.Model(&conversationRow{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", now).Error
	})
	if err != nil {
		return "", err
	}

	msg.ID = strconv.FormatInt(messageID, 10)
	msg.Timestamp = now
	return msg.ID, nil
}

// GetConversation retrieves a conversation by ID.
func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*core.Conversation, error) {
	var row conversationRow
	if err := s.store.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rowToConversation(&row)
}

// ListMessages returns messages in ascending timestamp order, insertion
// order breaking ties. The backing index on conversation_id keeps the
// lookup sub-linear in total messages.
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*core.Message, error) {
	q := s.store.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
		if offset > 0 {
			q = q.Offset(offset)
		}
	}

	var rows []messageRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	// SQLite cannot express OFFSET without LIMIT; page in memory when
	// only an offset was requested.
	if limit <= 0 && offset > 0 {
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:]
		}
	}
	return rowsToMessages(rows)
}

// RecentMessages returns the last limit messages in ascending order.
func (s *ConversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]*core.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []messageRow
	if err := s.store.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	// Reverse to oldest-first.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rowsToMessages(rows)
}

// ListByCustomer returns the customer's conversations, most recently
// updated first.
func (s *ConversationStore) ListByCustomer(ctx context.Context, customerID string) ([]*core.Conversation, error) {
	var rows []conversationRow
	if err := s.store.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	conversations := make([]*core.Conversation, 0, len(rows))
	for i := range rows {
		conv, err := rowToConversation(&rows[i])
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

// FormatHistory renders the recent message window for agent context.
func (s *ConversationStore) FormatHistory(ctx context.Context, conversationID string, limit int) (string, error) {
	messages, err := s.RecentMessages(ctx, conversationID, limit)
	if err != nil {
		return "", err
	}
	return storage.FormatHistory(messages), nil
}

// DeleteConversation removes a conversation and its messages, children
// first, in one transaction.
func (s *ConversationStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&messageRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&conversationRow{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ClearAll wipes both tables.
func (s *ConversationStore) ClearAll(ctx context.Context) error {
	return s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM messages").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM conversations").Error
	})
}

// Statistics reports table counts and the distinct customer count.
func (s *ConversationStore) Statistics(ctx context.Context) (*storage.ConversationStats, error) {
	db := s.store.db.WithContext(ctx)

	var conversations, messages, customers int64
	if err := db.Model(&conversationRow{}).Count(&conversations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&messageRow{}).Count(&messages).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&conversationRow{}).
		Where("customer_id <> ''").
		Distinct("customer_id").
		Count(&customers).Error; err != nil {
		return nil, err
	}

	return &storage.ConversationStats{
		TotalConversations: int(conversations),
		TotalMessages:      int(messages),
		UniqueCustomers:    int(customers),
	}, nil
}

// Close closes the shared database handle.
func (s *ConversationStore) Close() error {
	return s.store.Close()
}

func rowToConversation(row *conversationRow) (*core.Conversation, error) {
	meta, err := storage.UnmarshalMetadata(row.Metadata)
	if err != nil {
		return nil, err
	}
	return &core.Conversation{
		ID:           row.ID,
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Metadata:     meta,
	}, nil
}

func rowsToMessages(rows []messageRow) ([]*core.Message, error) {
	messages := make([]*core.Message, 0, len(rows))
	for i := range rows {
		meta, err := storage.UnmarshalMetadata(rows[i].Metadata)
		if err != nil {
			return nil, err
		}
		messages = append(messages, &core.Message{
			ID:             strconv.FormatInt(rows[i].ID, 10),
			ConversationID: rows[i].ConversationID,
			Timestamp:      rows[i].Timestamp,
			Sender:         core.SenderType(rows[i].SenderType),
			SenderName:     rows[i].SenderName,
			Content:        rows[i].Content,
			Metadata:       meta,
		})
	}
	return messages, nil
}
