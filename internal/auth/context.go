package auth

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/model"
)

// RequestKind says how a response should be shaped.
type RequestKind int

const (
	// KindPage expects redirects and rendered pages.
	KindPage RequestKind = iota
	// KindAPI expects JSON envelopes.
	KindAPI
)

const (
	identityKey    = "storefront.identity"
	sessionIDKey   = "storefront.session_id"
	tokenClaimsKey = "storefront.token_claims"
	requestKindKey = "storefront.request_kind"
)

// SetIdentity attaches the authenticated user to the request.
func SetIdentity(c echo.Context, user model.SessionUser) {
	c.Set(identityKey, user)
}

// Identity returns the authenticated user, if any.
func Identity(c echo.Context) (model.SessionUser, bool) {
	user, ok := c.Get(identityKey).(model.SessionUser)
	return user, ok
}

// SetSessionID records the session the identity came from.
func SetSessionID(c echo.Context, id string) {
	c.Set(sessionIDKey, id)
}

// SessionID returns the session id resolved for the request.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

// SetTokenClaims records the bearer token the identity came from.
func SetTokenClaims(c echo.Context, claims *Claims) {
	c.Set(tokenClaimsKey, claims)
}

// TokenClaims returns the bearer token claims resolved for the request.
func TokenClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(tokenClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

// SetRequestKind records how the response should be shaped.
func SetRequestKind(c echo.Context, kind RequestKind) {
	c.Set(requestKindKey, kind)
}

// Kind returns the recorded request kind. Requests that were never
// classified are treated as API requests.
func Kind(c echo.Context) RequestKind {
	if kind, ok := c.Get(requestKindKey).(RequestKind); ok {
		return kind
	}
	return KindAPI
}
