package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/authz"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/middleware"
)

type ReadyCheck func(ctx context.Context) error

type Deps struct {
	Logger    *slog.Logger
	AppName   string
	Version   string
	APIPrefix string

	Authenticator *authn.Authenticator
	Resolver      *authz.Resolver

	AuthHandler        *AuthHTTP
	UsersHandler       *UsersHTTP
	PermissionsHandler *PermissionsHTTP
	RolesHandler       *RolesHTTP
	AuditHandler       *AuditHTTP

	LoginRatePerMinute int
	ReadyChecks        map[string]ReadyCheck
}

// New builds the echo instance with the global middleware chain and routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(middleware.Authorization(middleware.Config{
		Authenticator: d.Authenticator,
		PublicPaths:   middleware.PublicPaths(d.APIPrefix, d.Version),
		RefreshPaths:  middleware.RefreshPaths(d.APIPrefix),
	}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"app": d.AppName, "version": d.Version})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.ReadyChecks))

	api := e.Group(d.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login, loginLimiter(d.LoginRatePerMinute))
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.GET("/me", d.AuthHandler.Me)
	auth.POST("/switch", d.AuthHandler.Switch, middleware.RequirePermissions(d.Resolver, "manage:auth", "switch:auth"))
	auth.POST("/change-password", d.AuthHandler.ChangePassword)
	auth.POST("/logout", d.AuthHandler.Logout)

	api.POST("/permissions/authorize", d.PermissionsHandler.Authorize)

	roles := api.Group("/roles")
	roles.PATCH("/give-permissions", d.RolesHandler.GivePermissions, middleware.RequirePermissions(d.Resolver, "manage:roles", "grant:role-permissions"))
	roles.PATCH("/revoke-permissions", d.RolesHandler.RevokePermissions, middleware.RequirePermissions(d.Resolver, "manage:roles", "revoke:role-permissions"))

	logs := api.Group("/audit-logs")
	logs.GET("", d.AuditHandler.List, middleware.RequirePermissions(d.Resolver, "manage:audit-logs", "view:audit-logs"))
	logs.GET("/own/activities", d.AuditHandler.Own)

	users := api.Group("/users")
	users.PATCH("/:id/active", d.UsersHandler.Activate, middleware.RequirePermissions(d.Resolver, "manage:users", "active:users"))
	users.PATCH("/:id/inactive", d.UsersHandler.Deactivate, middleware.RequirePermissions(d.Resolver, "manage:users", "inactive:users"))
}

func ready(checks map[string]ReadyCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		failed := echo.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logging.FromContext(ctx).Error("readiness check failed", "check", name, "error", err)
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
		}
		return c.NoContent(http.StatusOK)
	}
}

// loginLimiter throttles login attempts per client IP. A non-positive rate
// disables it.
func loginLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, please try again later")
		},
	})
}
