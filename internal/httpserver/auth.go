package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/middleware"
	"github.com/Skotchmaster/adminpanel/internal/service"
	"github.com/Skotchmaster/adminpanel/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, transport.Envelope{Success: true, Message: message, Data: data})
}

func tokenData(res *service.TokenResult) transport.TokenData {
	return transport.TokenData{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
		ExpiresIn:    res.ExpiresIn,
		User:         res.User,
	}
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		logging.FromContext(c.Request().Context()).Warn("bind_error", "status", 400, "error", err)
		return apperr.ErrValidation.WithMessage("invalid body").Wrap(err)
	}
	return nil
}

func principal(c echo.Context) (*authn.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return p, nil
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperr.ErrValidation.WithMessage("email and password are required")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Login successful", tokenData(res))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, c.RealIP())
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "User registered", identity)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	res, err := h.Svc.Refresh(c.Request().Context(), p.Claims)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Token refreshed", tokenData(res))
}

func (h *AuthHTTP) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	identity, err := h.Svc.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "User retrieved", identity)
}

func (h *AuthHTTP) Switch(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.SwitchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperr.ErrValidation.WithMessage("email is required")
	}

	res, err := h.Svc.Switch(c.Request().Context(), p, req.Email)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Account switched successfully", tokenData(res))
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), p, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Logout(c.Request().Context(), p); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Logout successful", nil)
}
