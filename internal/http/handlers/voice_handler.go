package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EphemeralTokenRequest optionally selects the realtime model.
type EphemeralTokenRequest struct {
	Model string `json:"model" example:"gemini-2.0-flash-exp"`
}

// EphemeralTokenResponse carries a short-lived voice credential.
type EphemeralTokenResponse struct {
	Token        string `json:"token"`
	ExpiresAt    string `json:"expires_at" example:"2025-06-01T12:10:00Z"`
	WebsocketURL string `json:"websocket_url"`
}

// EphemeralToken godoc
// @ID          createEphemeralToken
// @Summary     Voice session token
// @Description Issues a short-lived credential and the websocket URL for a realtime voice session.
// @Tags        Voice
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.EphemeralTokenRequest  false  "Optional model override"
// @Success     200  {object}  handlers.EphemeralTokenResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     503  {object}  handlers.ErrorResponse  "Model unavailable"
// @Router      /api/voice/ephemeral-token [post]
func (h *Handlers) EphemeralToken(c *gin.Context) {
	var req EphemeralTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tok, err := h.voiceSvc.EphemeralToken(c.Request.Context(), strings.TrimSpace(req.Model))
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, EphemeralTokenResponse{
		Token:        tok.Token,
		ExpiresAt:    tok.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		WebsocketURL: tok.WebsocketURL,
	})
}
