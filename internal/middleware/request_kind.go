// Package middleware holds the echo middleware that sits between routing
// and the handlers: request classification, identity resolution, access
// gates, request validation and CSRF protection.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
)

// ClassifyRequest records whether the request expects JSON or pages. The
// decision is made once, from a bearer Authorization header,
// X-Requested-With, Content-Type and Accept.
func ClassifyRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetRequestKind(c, detectKind(c))
			return next(c)
		}
	}
}

// ForceAPI marks every request of a route or group as an API request.
func ForceAPI() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetRequestKind(c, auth.KindAPI)
			return next(c)
		}
	}
}

func detectKind(c echo.Context) auth.RequestKind {
	h := c.Request().Header
	if strings.HasPrefix(h.Get(echo.HeaderAuthorization), "Bearer ") {
		return auth.KindAPI
	}
	if strings.EqualFold(h.Get("X-Requested-With"), "XMLHttpRequest") {
		return auth.KindAPI
	}
	if strings.Contains(h.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return auth.KindAPI
	}
	accept := h.Get(echo.HeaderAccept)
	if strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML) {
		return auth.KindAPI
	}
	return auth.KindPage
}
