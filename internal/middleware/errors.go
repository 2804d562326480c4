package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/pkg/logging"
)

// HTTPErrorHandler writes every error as {"success": false, "message": ...}
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := http.StatusInternalServerError, "Internal server error"
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprint(he.Message)
		if he.Message == nil {
			message = http.StatusText(status)
		}
	default:
		kind := apperr.KindOf(err)
		status = kind.Status()
		message = apperr.MessageOf(err)
		if kind == apperr.KindInternal || kind == apperr.KindExternalService {
			logging.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, echo.Map{"success": false, "message": message})
	}
	if werr != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(werr).Msg("failed to write error response")
	}
}
