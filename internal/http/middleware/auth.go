// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Auth() extracts the ID
// token from the Authorization header, verifies it, and stores the resulting
// identity in the Gin context:
//
//   - "userID": the verified UID (string), used by handlers and rate limiting
//   - "user":   the full *domain.User
//
// Every failure is a 401 carrying "WWW-Authenticate: Bearer" and the
// standard error envelope.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/auth"
	"github.com/tbourn/go-companion-backend/internal/domain"
)

const ctxKeyUser = "user"

// Auth returns a middleware that requires a valid bearer token.
func Auth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			lg := LoggerFrom(c)
			if auth.KindOf(err) == auth.KindUnknown {
				lg.Error().Err(err).Msg("token verification failed")
			} else {
				lg.Debug().Err(err).Msg("token rejected")
			}
			msg := "Authentication failed"
			if ae, ok := err.(*auth.Error); ok {
				msg = ae.Message()
			}
			unauthorized(c, msg)
			return
		}

		c.Set(ctxKeyUserID, user.UID)
		c.Set(ctxKeyUser, user)
		attachLogger(c, LoggerFrom(c).With().Str("user_id", user.UID).Logger())
		c.Next()
	}
}

// CurrentUser returns the identity stored by Auth, or nil when the route is
// not authenticated.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// bearerToken parses "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
