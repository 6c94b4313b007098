package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/transport"
)

// ErrorHandler renders classified errors as {message, resolution, error_code}.
// Framework errors keep their status and get a code derived from it.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := render(err)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func render(err error) (int, transport.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if ae := asAppErr(he.Internal); ae != nil {
				return render(ae)
			}
		}
		return he.Code, transport.ErrorResponse{
			Message:   fmt.Sprint(he.Message),
			ErrorCode: codeForStatus(he.Code),
		}
	}

	ae := apperr.From(err)
	return ae.Status, transport.ErrorResponse{
		Message:    ae.Message,
		Resolution: ae.Resolution,
		ErrorCode:  ae.Code,
	}
}

func asAppErr(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
