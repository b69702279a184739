package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// MsgTooManyRequests is the message returned to throttled clients.
const MsgTooManyRequests = "Too many requests, please try again later"

// Config describes one throttled route group.
type Config struct {
	// Scope separates counters of different route groups.
	Scope  string
	Limit  int
	Window time.Duration
}

// Middleware throttles requests per client IP. Redis failures let the
// request through and are logged.
func Middleware(l *Limiter, cfg Config, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Limit <= 0 {
				return next(c)
			}

			key := cfg.Scope + ":" + c.RealIP()
			res, err := l.Allow(c.Request().Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				retry := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, MsgTooManyRequests)
			}
			return next(c)
		}
	}
}
