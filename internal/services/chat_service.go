// Package services – ChatService
//
// This file implements the ChatService, which owns conversations and the chat
// streaming relay. A relay run walks through
//
//	Init → (CreateConversation) → LoadingHistory → Streaming → Persisting → Done
//
// and reports progress through an emit callback, one StreamEvent at a time,
// strictly in the order produced. The HTTP layer turns each event into an SSE
// frame.
//
// Service-level errors (e.g., ErrConversationNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
)

// Event types emitted by the relay.
const (
	EventConversationID = "conversation_id"
	EventChunk          = "chunk"
	EventDone           = "done"
	EventError          = "error"
)

const (
	// DefaultTitleMaxLen is the rune cap for auto-generated titles.
	DefaultTitleMaxLen = 50
	// partialSaveTimeout bounds the write of a partial reply after the
	// request context is gone.
	partialSaveTimeout = 5 * time.Second
)

// StreamEvent is one relay step. Value carries the conversation id, a text
// fragment, or an error message depending on Type; MessageID is set on done.
type StreamEvent struct {
	Type      string `json:"type"`
	Value     string `json:"value,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// ChatModel streams a reply, one fragment per onChunk call, and returns
// whatever text was produced even when it fails.
type ChatModel interface {
	StreamChat(ctx context.Context, message string, history []domain.Message, onChunk func(string) error) (string, error)
}

// ChatService provides conversation listing, history, and the chat relay.
type ChatService struct {
	Store repo.Store
	Model ChatModel

	// MaxMessageRunes caps incoming messages; 0 disables the check.
	MaxMessageRunes int
	// TitleMaxLen caps auto-generated titles by rune length.
	TitleMaxLen int
	// HistoryLimit is the number of most recent prior messages given to the model.
	HistoryLimit int
}

// NewChatService constructs a ChatService with the default limits.
func NewChatService(store repo.Store, model ChatModel) *ChatService {
	return &ChatService{
		Store:           store,
		Model:           model,
		MaxMessageRunes: 2000,
		TitleMaxLen:     DefaultTitleMaxLen,
		HistoryLimit:    repo.DefaultMessageLimit,
	}
}

// List returns the user's conversations, most recently updated first.
func (s *ChatService) List(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.Store.ListConversations(ctx, userID)
}

// History returns up to limit messages of a conversation owned by userID.
func (s *ChatService) History(ctx context.Context, userID, conversationID string, limit int) ([]domain.Message, error) {
	conv, err := s.Store.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return s.Store.ListMessages(ctx, userID, conversationID, limit)
}

// Send runs the chat relay for one user message.
//
// Errors returned before the first emit (validation, unknown conversation,
// store failure while resolving it) mean nothing was streamed. Once the
// model starts, fragments already emitted are final: if the model fails or
// emit reports the client is gone, the accumulated text is still saved as
// the assistant message, and the error is returned.
func (s *ChatService) Send(ctx context.Context, userID, conversationID, message string, emit func(StreamEvent) error) (err error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", userID),
		),
	)
	outcome := outcomeOK
	defer func() {
		chatStreams.WithLabelValues(outcome).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	message = strings.TrimSpace(message)
	if message == "" {
		outcome = outcomeInvalidBody
		return ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		outcome = outcomeInvalidBody
		return ErrTooLong
	}

	// Init / CreateConversation / LoadingHistory
	var history []domain.Message
	if conversationID != "" {
		conv, err := s.Store.GetConversation(ctx, userID, conversationID)
		if err != nil {
			outcome = outcomeStoreError
			return err
		}
		if conv == nil {
			outcome = outcomeNotFound
			return ErrConversationNotFound
		}
		history, err = s.Store.RecentMessages(ctx, userID, conversationID, s.HistoryLimit)
		if err != nil {
			outcome = outcomeStoreError
			return err
		}
	} else {
		conv, err := s.Store.CreateConversation(ctx, userID, domain.DefaultConversationTitle)
		if err != nil {
			outcome = outcomeStoreError
			return err
		}
		conversationID = conv.ID
		span.SetAttributes(attribute.String("conversation.id", conversationID))
		if err := emit(StreamEvent{Type: EventConversationID, Value: conversationID}); err != nil {
			outcome = outcomeClientGone
			return err
		}
	}

	sent, err := s.Store.AddMessage(ctx, userID, conversationID, domain.RoleUser, message)
	if err != nil {
		outcome = outcomeStoreError
		return err
	}
	if sent == nil {
		outcome = outcomeNotFound
		return ErrConversationNotFound
	}

	// Streaming
	full, err := s.Model.StreamChat(ctx, message, history, func(chunk string) error {
		chatChunks.Inc()
		return emit(StreamEvent{Type: EventChunk, Value: chunk})
	})
	if err != nil {
		outcome = outcomeClientGone
		if errors.Is(err, llm.ErrModelUnavailable) {
			outcome = outcomeModelError
		}
		s.savePartial(ctx, userID, conversationID, full, len(history) == 0, message)
		return err
	}

	// Persisting
	reply, err := s.Store.AddMessage(ctx, userID, conversationID, domain.RoleAssistant, full)
	if err != nil {
		outcome = outcomeStoreError
		return err
	}
	if reply == nil {
		// deleted while the reply was streaming
		outcome = outcomeNotFound
		return ErrConversationNotFound
	}
	if len(history) == 0 {
		upd := repo.ConversationUpdate{Title: s.titleFrom(message)}
		if err := s.Store.UpdateConversation(ctx, userID, conversationID, upd); err != nil {
			outcome = outcomeStoreError
			return err
		}
	}

	// Done
	if err := emit(StreamEvent{Type: EventDone, MessageID: reply.ID}); err != nil {
		outcome = outcomeClientGone
		return err
	}
	return nil
}

// savePartial stores the text streamed before a failure. It runs on a
// context detached from the (possibly cancelled) request.
func (s *ChatService) savePartial(ctx context.Context, userID, conversationID, text string, firstExchange bool, message string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), partialSaveTimeout)
	defer cancel()

	lg := log.Ctx(ctx).With().Str("conversation_id", conversationID).Logger()
	saved, err := s.Store.AddMessage(ctx, userID, conversationID, domain.RoleAssistant, text)
	if err != nil {
		lg.Error().Err(err).Msg("save partial reply")
		return
	}
	if saved == nil {
		lg.Warn().Msg("conversation gone; partial reply dropped")
		return
	}
	if firstExchange {
		if err := s.Store.UpdateConversation(ctx, userID, conversationID, repo.ConversationUpdate{Title: s.titleFrom(message)}); err != nil {
			lg.Warn().Err(err).Msg("set title after partial reply")
		}
	}
	lg.Info().Int("runes", utf8.RuneCountInString(text)).Msg("saved partial reply")
}

func (s *ChatService) titleFrom(message string) string {
	n := s.TitleMaxLen
	if n <= 0 {
		n = DefaultTitleMaxLen
	}
	return MakeTitle(message, n)
}

// MakeTitle derives a conversation title from the first user message:
// unchanged when it has at most max runes, otherwise its first max runes
// followed by "...".
func MakeTitle(message string, max int) string {
	if utf8.RuneCountInString(message) <= max {
		return message
	}
	return string([]rune(message)[:max]) + "..."
}
