package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
)

type Codec struct {
	Secret     []byte
	Method     jwt.SigningMethod
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// NewCodec builds a codec for an HMAC algorithm name such as "HS256".
func NewCodec(secret []byte, alg string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("tokens: unsupported signing method %q", alg)
	}
	return &Codec{
		Secret:     secret,
		Method:     method,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}, nil
}

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Codec) method() jwt.SigningMethod {
	if c.Method == nil {
		return jwt.SigningMethodHS256
	}
	return c.Method
}

func NewJTI() string { return uuid.NewString() }

// Issue signs a token for identity that expires ttl from now.
func (c *Codec) Issue(identity Identity, ttl time.Duration, refresh bool) (string, *Claims, error) {
	claims := &Claims{
		User:    identity,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
			ID:        NewJTI(),
		},
	}

	token, err := jwt.NewWithClaims(c.method(), claims).SignedString(c.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

func (c *Codec) IssueAccess(identity Identity) (string, *Claims, error) {
	return c.Issue(identity, c.AccessTTL, false)
}

func (c *Codec) IssueRefresh(identity Identity) (string, *Claims, error) {
	return c.Issue(identity, c.RefreshTTL, true)
}

// Verify checks signature and expiry. It does not consult any revocation
// list.
func (c *Codec) Verify(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.Secret, nil },
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired.Wrap(err)
		}
		return nil, apperr.ErrTokenInvalid.Wrap(err)
	}
	if !tkn.Valid || claims.ID == "" || claims.User.ID == 0 {
		return nil, apperr.ErrTokenInvalid
	}
	return &claims, nil
}
