package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/authz"
	"github.com/Skotchmaster/adminpanel/internal/service"
	"github.com/Skotchmaster/adminpanel/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func userID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrValidation.WithMessage("invalid user id")
	}
	return uint(id), nil
}

func (h *UsersHTTP) Activate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := userID(c)
	if err != nil {
		return err
	}
	identity, err := h.Svc.Activate(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "User activated", identity)
}

func (h *UsersHTTP) Deactivate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := userID(c)
	if err != nil {
		return err
	}
	identity, err := h.Svc.Deactivate(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "User deactivated", identity)
}

type PermissionsHTTP struct {
	Resolver *authz.Resolver
}

const superAdminGrant = "Super Admin has all permissions"

// Authorize reports whether the caller holds a single named permission.
func (h *PermissionsHTTP) Authorize(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.HasPermissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return apperr.ErrValidation.WithMessage("name is required")
	}

	d, err := h.Resolver.Authorize(c.Request().Context(), p.Identity(), []string{req.Name})
	if err != nil {
		return apperr.Internal(err)
	}

	out := transport.HasPermissionData{Authorized: d.Allowed}
	switch {
	case d.Source == authz.SourceSuperAdmin:
		grant := superAdminGrant
		out.Permission = &grant
	case d.Allowed:
		out.Permission = &req.Name
	}
	return ok(c, http.StatusOK, "Permission checked", out)
}
