package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/logging"
)

const principalKey = "principal"

type Config struct {
	Authenticator *authn.Authenticator
	// PublicPaths skip authentication entirely.
	PublicPaths []string
	// RefreshPaths require a refresh token instead of an access token.
	RefreshPaths []string
}

// PublicPaths is the default allow-list for an API mounted under prefix.
func PublicPaths(prefix, version string) []string {
	return []string{
		"/",
		"/favicon.ico",
		"/docs",
		"/redoc",
		"/openapi/" + version + ".json",
		"/docs/convention-id.md",
		"/docs/convention-en.md",
		"/health/live",
		"/health/ready",
		prefix + "/auth/login",
		prefix + "/auth/register",
	}
}

func RefreshPaths(prefix string) []string {
	return []string{prefix + "/auth/refresh"}
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[normalize(p)] = struct{}{}
	}
	return set
}

func normalize(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// Authorization authenticates every request outside the public allow-list and
// stores the resulting Principal on the context.
func Authorization(cfg Config) echo.MiddlewareFunc {
	public := pathSet(cfg.PublicPaths)
	refresh := pathSet(cfg.RefreshPaths)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := normalize(c.Request().URL.Path)
			if _, ok := public[path]; ok {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apperr.ErrUnauthorized
			}

			kind := authn.AccessToken
			if _, ok := refresh[path]; ok {
				kind = authn.RefreshToken
			}

			ctx := c.Request().Context()
			claims, err := cfg.Authenticator.Authenticate(ctx, header, kind)
			if err != nil {
				return err
			}

			p := &authn.Principal{Claims: claims, IPAddress: c.RealIP()}
			c.Set(principalKey, p)

			l := logging.FromContext(ctx).With("user_id", claims.User.ID, "jti", claims.JTI(), "token", kind.String())
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))

			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (*authn.Principal, bool) {
	p, ok := c.Get(principalKey).(*authn.Principal)
	return p, ok && p != nil
}
