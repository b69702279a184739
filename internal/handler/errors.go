package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/view"
)

// LoginPath is where page requests without a session are sent.
const LoginPath = "/auth/login"

// ErrorFunnel is the single place errors become responses. API requests get
// the JSON envelope; page requests are redirected to the login page on 401
// and get the rendered error page otherwise. Every error is logged once.
func ErrorFunnel(logger zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err, production)
		req := c.Request()

		event := logger.Warn()
		if httpErr.StatusCode >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Stack().Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", httpErr.StatusCode).
			Str("request_id", requestID(c)).
			Msg("request failed")

		if writeErr := writeError(c, httpErr); writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func writeError(c echo.Context, httpErr *apperrors.HTTPError) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(httpErr.StatusCode)
	}

	if auth.Kind(c) == auth.KindPage {
		if httpErr.StatusCode == http.StatusUnauthorized {
			return c.Redirect(http.StatusFound, LoginPath)
		}
		page := view.NewErrorPage(httpErr.StatusCode, httpErr.Message)
		err := c.Render(httpErr.StatusCode, view.ErrorTemplate, page)
		if err == nil || c.Response().Committed {
			return err
		}
	}

	return c.JSON(httpErr.StatusCode, Response{
		Success: false,
		Message: httpErr.Message,
		Errors:  httpErr.Fields,
	})
}

// toHTTPError keeps the status of echo's own errors (404 for unknown
// routes, 413 from the body limit, 429 from the rate limiter) and maps
// everything else through the application error taxonomy.
func toHTTPError(err error, production bool) *apperrors.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError && production {
			msg = apperrors.MsgInternalProduction
		}
		return apperrors.NewHTTPError(he.Code, msg)
	}
	return apperrors.MapErrorToHTTP(err, production)
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
