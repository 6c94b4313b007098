package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/authz"
	"github.com/Skotchmaster/adminpanel/internal/logging"
)

// RequirePermissions admits the caller when it holds any of names. It must
// run after Authorization.
func RequirePermissions(resolver *authz.Resolver, names ...string) echo.MiddlewareFunc {
	required := append([]string(nil), names...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return apperr.ErrUnauthorized
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			d, err := resolver.Authorize(ctx, p.Identity(), required)
			if err != nil {
				l.Error("authorization failed", "permissions", required, "error", err)
				return apperr.Internal(err)
			}
			if !d.Allowed {
				l.Warn("permission denied", "permissions", required, "role_id", p.Identity().RoleID)
				return apperr.ErrForbidden
			}

			l.Debug("permission granted", "permissions", required, "source", d.Source.String())
			return next(c)
		}
	}
}
