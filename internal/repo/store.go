// Package repo implements the document store gateway: CRUD over the per-user
// document tree (users/{uid}/conversations/{id}/messages, users/{uid}/moods).
//
// Two drivers satisfy the Store contract:
//
//   - FirestoreStore: the managed document store used in production.
//   - GormStore: a GORM/SQLite rendition of the same tree for local
//     development and tests.
//
// Error semantics:
//   - A missing document is not an error: lookups return (nil, nil) and
//     list queries return an empty slice.
//   - Every driver failure is wrapped with ErrStoreUnavailable so callers can
//     map it to a 5xx without knowing the driver.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// DefaultMessageLimit caps ListMessages when the caller passes limit <= 0.
const DefaultMessageLimit = 50

// ErrStoreUnavailable marks connectivity or driver failures of the document store.
var ErrStoreUnavailable = errors.New("document store unavailable")

// ConversationUpdate describes the mutations applied by UpdateConversation.
// UpdatedAt is always refreshed; an empty Title leaves the title untouched.
type ConversationUpdate struct {
	Title             string
	IncrementMessages bool
}

// Store is the document store gateway. Every operation is scoped by the
// owner's uid, so a conversation of another user is simply absent.
type Store interface {
	// ListConversations returns the user's conversations, most recently updated first.
	ListConversations(ctx context.Context, uid string) ([]domain.Conversation, error)
	// GetConversation returns the conversation or nil when it does not exist.
	GetConversation(ctx context.Context, uid, id string) (*domain.Conversation, error)
	// CreateConversation inserts an empty conversation with the given title.
	CreateConversation(ctx context.Context, uid, title string) (*domain.Conversation, error)
	// UpdateConversation refreshes UpdatedAt and applies upd. The timestamp
	// write and the count increment are separate, non-atomic mutations.
	UpdateConversation(ctx context.Context, uid, id string, upd ConversationUpdate) error
	// ListMessages returns up to limit messages in creation order.
	ListMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error)
	// RecentMessages returns the newest limit messages in creation order.
	RecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error)
	// AddMessage appends a message and bumps the conversation's count and
	// UpdatedAt. It returns (nil, nil) when the conversation is absent for uid.
	AddMessage(ctx context.Context, uid, conversationID, role, content string) (*domain.Message, error)
	// ListMoodsInRange returns the mood entries dated within [start, end]
	// (calendar days, both inclusive), oldest first.
	ListMoodsInRange(ctx context.Context, uid string, start, end time.Time) ([]domain.MoodEntry, error)
}

// unavailable wraps a driver error with ErrStoreUnavailable. nil stays nil.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// dayRange converts inclusive calendar-day bounds into the half-open
// instant range [from, until) in UTC.
func dayRange(start, end time.Time) (from, until time.Time) {
	s := start.UTC()
	e := end.UTC()
	from = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	until = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, until
}

func messageLimit(limit int) int {
	if limit <= 0 {
		return DefaultMessageLimit
	}
	return limit
}
