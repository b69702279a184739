package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
)

// RequireAuth rejects anonymous requests with Unauthorized. The error
// funnel turns that into a login redirect for page requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := auth.Identity(c); !ok {
				return apperrors.Unauthorized()
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects identities without the admin role with Forbidden.
// It is registered after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := auth.Identity(c)
			if !ok {
				return apperrors.Unauthorized()
			}
			if !user.IsAdmin() {
				return apperrors.Forbidden()
			}
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in users away from the login and
// registration endpoints.
func RedirectIfAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := auth.Identity(c)
			if !ok {
				return next(c)
			}
			if user.IsAdmin() {
				return c.Redirect(http.StatusFound, "/admin")
			}
			return c.Redirect(http.StatusFound, "/")
		}
	}
}
