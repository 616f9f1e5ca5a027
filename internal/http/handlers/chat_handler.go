// Chat HTTP handlers.
//
// This file exposes endpoints for the chat relay and conversation resources:
//   - POST   /api/chat/message             (SSE stream)
//   - GET    /api/chat/conversations       (list)
//   - GET    /api/chat/history/{id}        (messages of one conversation)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-companion-backend/internal/domain"
	"github.com/tbourn/go-companion-backend/internal/http/middleware"
	"github.com/tbourn/go-companion-backend/internal/repo"
	"github.com/tbourn/go-companion-backend/internal/services"
	"github.com/tbourn/go-companion-backend/internal/utils"
)

//
// DTOs
//

// ChatMessageRequest is the JSON payload for sending a chat message.
type ChatMessageRequest struct {
	// ConversationID continues an existing conversation; empty starts a new one.
	ConversationID string `json:"conversation_id" example:"3b1f8a52-1d7e-4c1c-9a55-0c6f2b7e6a10"`
	// Message is the user's text (1–2000 chars).
	Message string `json:"message" binding:"required,min=1,max=2000" example:"I've been feeling anxious about work."`
}

// ConversationSummary is one entry of the conversation list.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationListResponse wraps the user's conversations.
type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// MessageResponse is one message of a conversation history.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role" enums:"user,assistant"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationHistoryResponse wraps the messages of a conversation.
type ConversationHistoryResponse struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []MessageResponse `json:"messages"`
}

const (
	defaultHistoryLimit = repo.DefaultMessageLimit
	maxHistoryLimit     = 200
	untitled            = "Untitled"
)

//
// Helpers
//

// sanitizeMessage trims surrounding whitespace and normalizes to NFC so that
// visually identical input is stored and titled identically.
func sanitizeMessage(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// clampHistoryLimit parses the limit query param, bounded to [1, 200].
func clampHistoryLimit(c *gin.Context) int {
	return utils.PositiveAtoi(c.Query("limit"), defaultHistoryLimit, maxHistoryLimit)
}

//
// Handlers
//

// SendMessage godoc
// @ID          sendChatMessage
// @Summary     Send a chat message
// @Description Streams the assistant's reply as Server-Sent Events. Each frame is `data: <json>` with `type` one of
// @Description conversation_id (new conversations only, first), chunk (one per model fragment), done (with message_id),
// @Description or error (terminal, when the stream fails after it started).
// @Tags        Chat
// @Accept      json
// @Produce     text/event-stream
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChatMessageRequest  true  "Chat message"
//
// @Success     200  {string}  string  "event stream"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Store or model unavailable"
// @Router      /api/chat/message [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required (1–2000 chars)")
		return
	}

	ctx := c.Request.Context()
	w := &sseWriter{c: c}
	err := h.chatSvc.Send(ctx, userID(c), strings.TrimSpace(req.ConversationID), sanitizeMessage(req.Message), w.send)
	if err == nil {
		return
	}
	if !w.started {
		failErr(c, err)
		return
	}

	// The stream is already open; the status line cannot change any more.
	lg := middleware.LoggerFrom(c)
	if ctx.Err() != nil {
		lg.Info().Err(err).Msg("chat client disconnected")
		return
	}
	_ = c.Error(err)
	lg.Error().Err(err).Msg("chat stream failed")
	_, _, msg := classifyError(err)
	_ = w.send(services.StreamEvent{Type: services.EventError, Value: msg})
}

// ListConversations godoc
// @ID          listConversations
// @Summary     List conversations
// @Description Returns the user's conversations, most recently updated first.
// @Tags        Chat
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ConversationListResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /api/chat/conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	items, err := h.chatSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ConversationListResponse{Conversations: toSummaries(items)})
}

// GetHistory godoc
// @ID          getConversationHistory
// @Summary     Conversation history
// @Description Returns the messages of a conversation owned by the current user, oldest first.
// @Tags        Chat
// @Produce     json
// @Security    BearerAuth
//
// @Param       conversation_id  path   string  true   "Conversation ID"
// @Param       limit            query  int     false  "Max messages"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object}  handlers.ConversationHistoryResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /api/chat/history/{conversation_id} [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	convID := strings.TrimSpace(c.Param("conversation_id"))
	msgs, err := h.chatSvc.History(c.Request.Context(), userID(c), convID, clampHistoryLimit(c))
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{ID: m.ID, Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	ok(c, http.StatusOK, ConversationHistoryResponse{ConversationID: convID, Messages: out})
}

func toSummaries(items []domain.Conversation) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(items))
	for _, c := range items {
		title := c.Title
		if title == "" {
			title = untitled
		}
		out = append(out, ConversationSummary{
			ID:           c.ID,
			Title:        title,
			MessageCount: c.MessageCount,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return out
}
