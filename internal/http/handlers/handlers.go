// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and validate input, call
// application services, and translate results into HTTP responses. All
// dependencies are service interfaces so the transport can be tested with
// fakes or with the real services over an in-memory store.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/http/middleware"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatService defines conversation and relay operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// List returns the user's conversations, most recently updated first.
	List(ctx context.Context, userID string) ([]domain.Conversation, error)
	// History returns up to limit messages of a conversation owned by userID.
	History(ctx context.Context, userID, conversationID string, limit int) ([]domain.Message, error)
	// Send runs the chat relay, reporting each step through emit.
	Send(ctx context.Context, userID, conversationID, message string, emit func(services.StreamEvent) error) error
}

// JournalService produces reflections on journal entries.
type JournalService interface {
	Insight(ctx context.Context, content string) (string, error)
}

// MoodService analyzes mood entries over a date range.
type MoodService interface {
	Analyze(ctx context.Context, userID, startDate, endDate string) (*services.MoodAnalysis, error)
}

// VoiceService issues credentials for realtime voice sessions.
type VoiceService interface {
	EphemeralToken(ctx context.Context, model string) (*llm.VoiceToken, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the companion API.
type Handlers struct {
	chatSvc    ChatService
	journalSvc JournalService
	moodSvc    MoodService
	voiceSvc   VoiceService

	version string
}

// Version is reported by /health.
const Version = "1.0.0"

// New constructs and returns a Handlers instance bound to the given services.
func New(chatSvc ChatService, journalSvc JournalService, moodSvc MoodService, voiceSvc VoiceService) *Handlers {
	return &Handlers{
		chatSvc:    chatSvc,
		journalSvc: journalSvc,
		moodSvc:    moodSvc,
		voiceSvc:   voiceSvc,
		version:    Version,
	}
}

// userID returns the authenticated subject id set by middleware.Auth.
func userID(c *gin.Context) string {
	if u := middleware.CurrentUser(c); u != nil {
		return u.UID
	}
	return ""
}
