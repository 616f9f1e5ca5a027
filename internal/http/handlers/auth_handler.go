// Auth HTTP handlers.
//
// Both endpoints sit behind middleware.Auth, so reaching them already means
// the bearer token verified.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/http/middleware"
)

// UserResponse describes the authenticated user. Optional claims are null
// when the identity provider did not supply them.
type UserResponse struct {
	UID     string  `json:"uid"`
	Email   *string `json:"email"`
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}

// VerifyResponse confirms a valid token.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	UID   string `json:"uid"`
}

// Me godoc
// @ID          getMe
// @Summary     Current user
// @Description Returns the identity carried by the bearer token.
// @Tags        Authentication
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /api/auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}
	ok(c, http.StatusOK, UserResponse{
		UID:     u.UID,
		Email:   optional(u.Email),
		Name:    optional(u.Name),
		Picture: optional(u.Picture),
	})
}

// Verify godoc
// @ID          verifyToken
// @Summary     Verify token
// @Description Confirms that the bearer token is valid.
// @Tags        Authentication
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.VerifyResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /api/auth/verify [post]
func (h *Handlers) Verify(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}
	ok(c, http.StatusOK, VerifyResponse{Valid: true, UID: uid})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
