package authn

import (
	"context"
	"strings"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/revocation"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

// Kind selects which token flavour a guard accepts.
type Kind int

const (
	AccessToken Kind = iota
	RefreshToken
)

func (k Kind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

type Authenticator struct {
	Tokens      *tokens.Codec
	Revocations revocation.Store
}

func NewAuthenticator(codec *tokens.Codec, store revocation.Store) *Authenticator {
	return &Authenticator{Tokens: codec, Revocations: store}
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	Claims    *tokens.Claims
	IPAddress string
}

func (p *Principal) Identity() tokens.Identity { return p.Claims.User }

func (p *Principal) JTI() string { return p.Claims.JTI() }

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate decodes the bearer credential, rejects revoked tokens and
// enforces the requested token kind, in that order.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string, kind Kind) (*tokens.Claims, error) {
	raw, ok := BearerToken(authorization)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}

	claims, err := a.Tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := a.Revocations.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if revoked {
		return nil, apperr.ErrTokenRevoked
	}

	switch {
	case kind == AccessToken && claims.Refresh:
		return nil, apperr.ErrAccessTokenRequired
	case kind == RefreshToken && !claims.Refresh:
		return nil, apperr.ErrRefreshTokenRequired
	}

	return claims, nil
}
