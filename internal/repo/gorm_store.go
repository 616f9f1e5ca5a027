package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// GormStore adapts the GORM repository functions to the Store contract.
// It is the SQLite driver used for local development and tests.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened (and migrated) *gorm.DB.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

func (s *GormStore) ListConversations(ctx context.Context, uid string) ([]domain.Conversation, error) {
	out, err := ListConversations(ctx, s.db, uid)
	if err != nil {
		return nil, unavailable("list conversations", err)
	}
	return out, nil
}

func (s *GormStore) GetConversation(ctx context.Context, uid, id string) (*domain.Conversation, error) {
	c, err := GetConversation(ctx, s.db, id, uid)
	return c, unavailable("get conversation", err)
}

func (s *GormStore) CreateConversation(ctx context.Context, uid, title string) (*domain.Conversation, error) {
	if title == "" {
		title = domain.DefaultConversationTitle
	}
	c, err := CreateConversation(ctx, s.db, uid, title)
	if err != nil {
		return nil, unavailable("create conversation", err)
	}
	return c, nil
}

func (s *GormStore) UpdateConversation(ctx context.Context, uid, id string, upd ConversationUpdate) error {
	if err := TouchConversation(ctx, s.db, id, uid, upd.Title); err != nil {
		return unavailable("update conversation", err)
	}
	if upd.IncrementMessages {
		if err := IncrementMessageCount(ctx, s.db, id, uid); err != nil {
			return unavailable("increment message count", err)
		}
	}
	return nil
}

func (s *GormStore) ListMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error) {
	c, err := GetConversation(ctx, s.db, conversationID, uid)
	if err != nil {
		return nil, unavailable("list messages", err)
	}
	if c == nil {
		return []domain.Message{}, nil
	}
	out, err := ListMessages(ctx, s.db, conversationID, messageLimit(limit))
	if err != nil {
		return nil, unavailable("list messages", err)
	}
	return out, nil
}

func (s *GormStore) RecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error) {
	c, err := GetConversation(ctx, s.db, conversationID, uid)
	if err != nil {
		return nil, unavailable("recent messages", err)
	}
	if c == nil {
		return []domain.Message{}, nil
	}
	out, err := ListRecentMessages(ctx, s.db, conversationID, messageLimit(limit))
	if err != nil {
		return nil, unavailable("recent messages", err)
	}
	return out, nil
}

// AddMessage checks ownership, inserts the message and bumps the parent's
// count and UpdatedAt in one transaction.
func (s *GormStore) AddMessage(ctx context.Context, uid, conversationID, role, content string) (*domain.Message, error) {
	var m *domain.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := GetConversation(ctx, tx, conversationID, uid)
		if err != nil || c == nil {
			return err
		}
		if m, err = CreateMessage(ctx, tx, conversationID, role, content); err != nil {
			return err
		}
		if err := TouchConversation(ctx, tx, conversationID, uid, ""); err != nil {
			return err
		}
		return IncrementMessageCount(ctx, tx, conversationID, uid)
	})
	if err != nil {
		return nil, unavailable("add message", err)
	}
	return m, nil
}

func (s *GormStore) ListMoodsInRange(ctx context.Context, uid string, start, end time.Time) ([]domain.MoodEntry, error) {
	from, until := dayRange(start, end)
	out, err := ListMoods(ctx, s.db, uid, from, until)
	if err != nil {
		return nil, unavailable("list moods", err)
	}
	return out, nil
}
