// Package auth verifies bearer ID tokens issued by the identity provider and
// turns them into domain users.
//
// Failures are reported as *Error values tagged with a Kind so the HTTP layer
// can choose a message without inspecting SDK error strings. Every kind maps
// to 401 Unauthorized.
package auth

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// Kind classifies a verification failure.
type Kind int

const (
	// KindUnauthenticated covers missing, malformed, and rejected tokens.
	KindUnauthenticated Kind = iota
	// KindExpired means the token was well formed but past its expiry.
	KindExpired
	// KindUnknown is any other verification failure (provider outage, revoked key set).
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Error is returned by Verifier implementations.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "auth: " + e.Kind.String()
	}
	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the client-facing description of the failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindExpired:
		return "Token has expired"
	case KindUnauthenticated:
		return "Invalid authentication token"
	default:
		return "Authentication failed"
	}
}

// KindOf extracts the Kind of err, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Verifier checks a raw bearer token (without the "Bearer " prefix).
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// tokenVerifier is the subset of *firebase auth.Client used here.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier wraps an initialized Firebase auth client.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

var _ Verifier = (*FirebaseVerifier)(nil)

// Verify validates token and returns the identity it carries.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, &Error{Kind: KindUnauthenticated, Err: errors.New("missing token")}
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, classify(err)
	}
	return userFromClaims(tok), nil
}

func classify(err error) error {
	switch {
	case fbauth.IsIDTokenExpired(err):
		return &Error{Kind: KindExpired, Err: err}
	case fbauth.IsIDTokenInvalid(err), fbauth.IsIDTokenRevoked(err):
		return &Error{Kind: KindUnauthenticated, Err: err}
	default:
		return &Error{Kind: KindUnknown, Err: err}
	}
}

func userFromClaims(tok *fbauth.Token) *domain.User {
	u := &domain.User{UID: tok.UID}
	u.Email = claimString(tok.Claims, "email")
	u.Name = claimString(tok.Claims, "name")
	u.Picture = claimString(tok.Claims, "picture")
	return u
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
