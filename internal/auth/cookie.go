package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SessionCookie is the name of the cookie carrying the session id.
const SessionCookie = "sid"

// CookieHelper manages the session cookie.
type CookieHelper struct {
	secure bool
	maxAge time.Duration
}

// NewCookieHelper creates a cookie helper. secure marks the cookie
// HTTPS-only.
func NewCookieHelper(secure bool, maxAge time.Duration) *CookieHelper {
	return &CookieHelper{secure: secure, maxAge: maxAge}
}

// SetSession writes the session cookie.
func (h *CookieHelper) SetSession(c echo.Context, sessionID string) {
	c.SetCookie(h.cookie(sessionID, int(h.maxAge.Seconds())))
}

// ClearSession expires the session cookie.
func (h *CookieHelper) ClearSession(c echo.Context) {
	c.SetCookie(h.cookie("", -1))
}

// SessionID retrieves the session id from the request cookie.
func (h *CookieHelper) SessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *CookieHelper) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
