package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/service"
	"github.com/Skotchmaster/adminpanel/internal/transport"
)

type RolesHTTP struct {
	Svc *service.RoleService
}

func (h *RolesHTTP) GivePermissions(c echo.Context) error {
	return h.change(c, h.Svc.GivePermissions)
}

func (h *RolesHTTP) RevokePermissions(c echo.Context) error {
	return h.change(c, h.Svc.RevokePermissions)
}

func (h *RolesHTTP) change(c echo.Context, apply func(ctx context.Context, actor *authn.Principal, roleID uint, permissionIDs []uint) (*service.RoleGrantResult, error)) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.RolePermissionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := apply(c.Request().Context(), p, req.RoleID, req.PermissionIDs)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, res.Message, transport.RolePermissionsData{
		RoleID:      res.RoleID,
		Permissions: res.Permissions,
	})
}
