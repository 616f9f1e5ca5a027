package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
)

// ----- Fake store -----

type memStore struct {
	mu    sync.Mutex
	seq   int
	convs map[string]*domain.Conversation
	msgs  map[string][]domain.Message
	moods []domain.MoodEntry

	failCreate  error
	failAdd     error
	failAddRole string // when set, failAdd only applies to this role
	updates     []repo.ConversationUpdate
	lastRange   [2]time.Time
}

func newMemStore() *memStore {
	return &memStore{convs: map[string]*domain.Conversation{}, msgs: map[string][]domain.Message{}}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *memStore) ListConversations(_ context.Context, uid string) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Conversation{}
	for _, c := range s.convs {
		if c.UserID == uid {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memStore) GetConversation(_ context.Context, uid, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok || c.UserID != uid {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) CreateConversation(_ context.Context, uid, title string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	now := time.Now().UTC()
	c := &domain.Conversation{ID: s.nextID("c"), UserID: uid, Title: title, CreatedAt: now, UpdatedAt: now}
	s.convs[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *memStore) UpdateConversation(_ context.Context, uid, id string, upd repo.ConversationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, upd)
	c, ok := s.convs[id]
	if !ok || c.UserID != uid {
		return nil
	}
	c.UpdatedAt = time.Now().UTC()
	if upd.Title != "" {
		c.Title = upd.Title
	}
	if upd.IncrementMessages {
		c.MessageCount++
	}
	return nil
}

func (s *memStore) ListMessages(_ context.Context, uid, convID string, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Message{}, s.msgs[convID]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) RecentMessages(_ context.Context, uid, convID string, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[convID]; !ok || c.UserID != uid {
		return []domain.Message{}, nil
	}
	out := append([]domain.Message{}, s.msgs[convID]...)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memStore) AddMessage(ctx context.Context, uid, convID, role, content string) (*domain.Message, error) {
	s.mu.Lock()
	if s.failAdd != nil && (s.failAddRole == "" || s.failAddRole == role) {
		s.mu.Unlock()
		return nil, s.failAdd
	}
	if c, ok := s.convs[convID]; !ok || c.UserID != uid {
		s.mu.Unlock()
		return nil, nil
	}
	m := domain.Message{ID: s.nextID("m"), ConversationID: convID, Role: role, Content: content, CreatedAt: time.Now().UTC()}
	s.msgs[convID] = append(s.msgs[convID], m)
	s.mu.Unlock()
	if err := s.UpdateConversation(ctx, uid, convID, repo.ConversationUpdate{IncrementMessages: true}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *memStore) deleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	delete(s.msgs, id)
}

func (s *memStore) ListMoodsInRange(_ context.Context, uid string, start, end time.Time) ([]domain.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRange = [2]time.Time{start, end}
	out := []domain.MoodEntry{}
	for _, m := range s.moods {
		if m.UserID == uid {
			out = append(out, m)
		}
	}
	return out, nil
}

// ----- Fake models -----

type fakeChatModel struct {
	chunks  []string
	err     error // returned after all chunks
	history []domain.Message
	called  bool
	after   func() // runs once all chunks are emitted
}

func (m *fakeChatModel) StreamChat(_ context.Context, _ string, history []domain.Message, onChunk func(string) error) (string, error) {
	m.called = true
	m.history = history
	full := ""
	for _, c := range m.chunks {
		if err := onChunk(c); err != nil {
			return full, err
		}
		full += c
	}
	if m.after != nil {
		m.after()
	}
	return full, m.err
}

type fakeMoodModel struct {
	reply string
	err   error
	calls int
	stats llm.MoodStats
}

func (m *fakeMoodModel) MoodAnalysis(_ context.Context, stats llm.MoodStats, _ []domain.MoodEntry) (string, error) {
	m.calls++
	m.stats = stats
	return m.reply, m.err
}

type fakeJournalModel struct {
	got   string
	reply string
	err   error
}

func (m *fakeJournalModel) JournalInsight(_ context.Context, content string) (string, error) {
	m.got = content
	return m.reply, m.err
}

var (
	_ repo.Store   = (*memStore)(nil)
	_ ChatModel    = (*fakeChatModel)(nil)
	_ MoodModel    = (*fakeMoodModel)(nil)
	_ JournalModel = (*fakeJournalModel)(nil)
)
