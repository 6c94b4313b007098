package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the user snapshot embedded in a token at issuance. It is not
// refreshed from the database while the token lives.
type Identity struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	RoleID       uint       `json:"role_id"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoggedIn *time.Time `json:"last_logged_in"`
}

type Claims struct {
	User    Identity `json:"user"`
	Refresh bool     `json:"refresh"`
	jwt.RegisteredClaims
}

func (c *Claims) JTI() string { return c.ID }

// Expiry returns the absolute expiry instant, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
