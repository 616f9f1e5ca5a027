package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	liveSocketURL      = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	liveConstrainedURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContentConstrained"
	newSessionWindow   = time.Minute

	// auth tokens are only served by the v1alpha surface.
	tokenAPIVersion = "v1alpha"
)

// VoiceToken is a credential for one realtime voice session.
type VoiceToken struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	WebsocketURL string    `json:"websocket_url"`
}

// EphemeralToken issues a short-lived credential for a realtime voice
// session on model (the configured live model when empty).
//
// With MintVoiceTokens the provider mints a single-use token locked to the
// model. Otherwise the API key itself is returned; that path is for local
// development only and is rejected in production by the config layer.
func (g *Gateway) EphemeralToken(ctx context.Context, model string) (*VoiceToken, error) {
	if model == "" {
		model = g.opts.LiveModel
	}
	expires := g.now().UTC().Add(g.opts.VoiceTokenTTL)

	if !g.opts.MintVoiceTokens {
		log.Ctx(ctx).Warn().Msg("issuing placeholder voice token (raw API key); not for production use")
		return &VoiceToken{
			Token:        g.opts.APIKey,
			ExpiresAt:    expires,
			WebsocketURL: liveSocketURL + "?model=" + url.QueryEscape(model),
		}, nil
	}

	tok, err := g.mintToken(ctx, model, expires)
	observe("voice_token", err)
	if err != nil {
		return nil, fmt.Errorf("%w: voice token: %v", ErrModelUnavailable, err)
	}
	return tok, nil
}

func (g *Gateway) tokenClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     g.opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    g.opts.BaseURL,
			APIVersion: tokenAPIVersion,
		},
	})
}

func (g *Gateway) mintToken(ctx context.Context, model string, expires time.Time) (*VoiceToken, error) {
	client, err := g.tokenClient(ctx)
	if err != nil {
		return nil, err
	}

	uses := int32(1)
	out, err := client.AuthTokens.Create(ctx, &genai.CreateAuthTokenConfig{
		Uses:                 &uses,
		ExpireTime:           expires,
		NewSessionExpireTime: g.now().UTC().Add(newSessionWindow),
		LiveConnectConstraints: &genai.LiveConnectConstraints{
			Model: qualifiedModel(model),
		},
	})
	if err != nil {
		return nil, err
	}
	if out == nil || out.Name == "" {
		return nil, errors.New("token endpoint returned no token")
	}
	if t, err := time.Parse(time.RFC3339, out.ExpireTime); err == nil {
		expires = t.UTC()
	}

	return &VoiceToken{
		Token:        out.Name,
		ExpiresAt:    expires,
		WebsocketURL: liveConstrainedURL + "?access_token=" + url.QueryEscape(out.Name),
	}, nil
}

func qualifiedModel(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
