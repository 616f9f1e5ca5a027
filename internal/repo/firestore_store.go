package repo

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// Firestore collection and field names. The field names are shared with the
// client apps that write moods, so they must not change.
const (
	colUsers         = "users"
	colConversations = "conversations"
	colMessages      = "messages"
	colMoods         = "moods"

	fieldTitle        = "title"
	fieldMessageCount = "messageCount"
	fieldCreatedAt    = "createdAt"
	fieldUpdatedAt    = "updatedAt"
	fieldDate         = "date"
)

// conversationDoc is the Firestore shape of users/{uid}/conversations/{id}.
type conversationDoc struct {
	Title        string    `firestore:"title"`
	MessageCount int       `firestore:"messageCount"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func (d conversationDoc) toDomain(id, uid string) domain.Conversation {
	return domain.Conversation{
		ID:           id,
		UserID:       uid,
		Title:        d.Title,
		MessageCount: d.MessageCount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// messageDoc is the Firestore shape of .../conversations/{id}/messages/{mid}.
type messageDoc struct {
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (d messageDoc) toDomain(id, conversationID string) domain.Message {
	return domain.Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           d.Role,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
	}
}

// moodDoc is the Firestore shape of users/{uid}/moods/{id}.
type moodDoc struct {
	Date  time.Time `firestore:"date"`
	Score float64   `firestore:"score"`
	Note  string    `firestore:"note,omitempty"`
}

func (d moodDoc) toDomain(id, uid string) domain.MoodEntry {
	return domain.MoodEntry{ID: id, UserID: uid, Date: d.Date, Score: d.Score, Note: d.Note}
}

// FirestoreStore implements Store on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client. The caller owns
// the client and closes it on shutdown.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

var _ Store = (*FirestoreStore)(nil)

func (s *FirestoreStore) conversations(uid string) *firestore.CollectionRef {
	return s.client.Collection(colUsers).Doc(uid).Collection(colConversations)
}

func (s *FirestoreStore) ListConversations(ctx context.Context, uid string) ([]domain.Conversation, error) {
	snaps, err := s.conversations(uid).OrderBy(fieldUpdatedAt, firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("list conversations", err)
	}
	out := make([]domain.Conversation, 0, len(snaps))
	for _, snap := range snaps {
		var d conversationDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, unavailable("decode conversation", err)
		}
		out = append(out, d.toDomain(snap.Ref.ID, uid))
	}
	return out, nil
}

func (s *FirestoreStore) GetConversation(ctx context.Context, uid, id string) (*domain.Conversation, error) {
	snap, err := s.conversations(uid).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get conversation", err)
	}
	var d conversationDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, unavailable("decode conversation", err)
	}
	c := d.toDomain(snap.Ref.ID, uid)
	return &c, nil
}

func (s *FirestoreStore) CreateConversation(ctx context.Context, uid, title string) (*domain.Conversation, error) {
	if title == "" {
		title = domain.DefaultConversationTitle
	}
	now := time.Now().UTC()
	d := conversationDoc{Title: title, CreatedAt: now, UpdatedAt: now}
	ref := s.conversations(uid).NewDoc()
	if _, err := ref.Set(ctx, d); err != nil {
		return nil, unavailable("create conversation", err)
	}
	c := d.toDomain(ref.ID, uid)
	return &c, nil
}

// UpdateConversation writes updatedAt (and title) first and the increment
// second. Updating a missing document is ignored.
func (s *FirestoreStore) UpdateConversation(ctx context.Context, uid, id string, upd ConversationUpdate) error {
	ref := s.conversations(uid).Doc(id)
	fields := []firestore.Update{{Path: fieldUpdatedAt, Value: time.Now().UTC()}}
	if upd.Title != "" {
		fields = append(fields, firestore.Update{Path: fieldTitle, Value: upd.Title})
	}
	if _, err := ref.Update(ctx, fields); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return unavailable("update conversation", err)
	}
	if upd.IncrementMessages {
		_, err := ref.Update(ctx, []firestore.Update{{Path: fieldMessageCount, Value: firestore.Increment(1)}})
		if err != nil && status.Code(err) != codes.NotFound {
			return unavailable("increment message count", err)
		}
	}
	return nil
}

func (s *FirestoreStore) ListMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error) {
	q := s.conversations(uid).Doc(conversationID).Collection(colMessages).
		OrderBy(fieldCreatedAt, firestore.Asc).
		Limit(messageLimit(limit))
	it := q.Documents(ctx)
	defer it.Stop()

	out := []domain.Message{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, unavailable("list messages", err)
		}
		var d messageDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, unavailable("decode message", err)
		}
		out = append(out, d.toDomain(snap.Ref.ID, conversationID))
	}
	return out, nil
}

func (s *FirestoreStore) RecentMessages(ctx context.Context, uid, conversationID string, limit int) ([]domain.Message, error) {
	q := s.conversations(uid).Doc(conversationID).Collection(colMessages).
		OrderBy(fieldCreatedAt, firestore.Desc).
		Limit(messageLimit(limit))
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("recent messages", err)
	}
	out := make([]domain.Message, len(snaps))
	for i, snap := range snaps {
		var d messageDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, unavailable("decode message", err)
		}
		out[len(snaps)-1-i] = d.toDomain(snap.Ref.ID, conversationID)
	}
	return out, nil
}

// AddMessage writes the message and bumps the parent in one transaction,
// so a message is never stored under a conversation that does not exist.
func (s *FirestoreStore) AddMessage(ctx context.Context, uid, conversationID, role, content string) (*domain.Message, error) {
	convRef := s.conversations(uid).Doc(conversationID)
	msgRef := convRef.Collection(colMessages).NewDoc()
	d := messageDoc{Role: role, Content: content, CreatedAt: time.Now().UTC()}

	found := false
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		found = false
		if _, err := tx.Get(convRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		found = true
		if err := tx.Create(msgRef, d); err != nil {
			return err
		}
		return tx.Update(convRef, []firestore.Update{
			{Path: fieldUpdatedAt, Value: d.CreatedAt},
			{Path: fieldMessageCount, Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return nil, unavailable("add message", err)
	}
	if !found {
		return nil, nil
	}
	m := d.toDomain(msgRef.ID, conversationID)
	return &m, nil
}

func (s *FirestoreStore) ListMoodsInRange(ctx context.Context, uid string, start, end time.Time) ([]domain.MoodEntry, error) {
	from, until := dayRange(start, end)
	snaps, err := s.client.Collection(colUsers).Doc(uid).Collection(colMoods).
		Where(fieldDate, ">=", from).
		Where(fieldDate, "<", until).
		OrderBy(fieldDate, firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("list moods", err)
	}
	out := make([]domain.MoodEntry, 0, len(snaps))
	for _, snap := range snaps {
		var d moodDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, unavailable("decode mood", err)
		}
		out = append(out, d.toDomain(snap.Ref.ID, uid))
	}
	return out, nil
}
