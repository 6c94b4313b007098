package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/service"
)

type AuditHTTP struct {
	Svc *service.AuditService
}

func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}

func (h *AuditHTTP) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), c.QueryParam("keywords"), queryInt(c, "skip", 0), queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Audit logs retrieved", page)
}

func (h *AuditHTTP) Own(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page, err := h.Svc.Own(c.Request().Context(), p, c.QueryParam("keywords"), queryInt(c, "skip", 0), queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Audit logs retrieved", page)
}
