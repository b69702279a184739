package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// Skipper defines a function to skip middleware.
	Skipper echomw.Skipper
	// AllowedOrigins should match the CORS allowed origins.
	AllowedOrigins []string
}

// CSRF validates the Origin, or failing that the Referer, of state-changing
// requests against the allowed origins. Requests carrying neither header
// are rejected.
func CSRF(config CSRFConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = echomw.DefaultSkipper
	}
	allowed := make(map[string]bool, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		allowed[normalizeOrigin(origin)] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			if origin := c.Request().Header.Get(echo.HeaderOrigin); origin != "" {
				if !allowed[normalizeOrigin(origin)] {
					return echo.NewHTTPError(http.StatusForbidden, "CSRF validation failed: invalid origin")
				}
				return next(c)
			}

			if referer := c.Request().Referer(); referer != "" {
				if !allowed[normalizeOrigin(extractOrigin(referer))] {
					return echo.NewHTTPError(http.StatusForbidden, "CSRF validation failed: invalid referer")
				}
				return next(c)
			}

			return echo.NewHTTPError(http.StatusForbidden, "CSRF validation failed: missing origin")
		}
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin returns scheme://host of rawURL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
