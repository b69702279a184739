package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront/internal/auth"
)

const bearerTokenKey = "storefront.bearer_token"

// LoadSession resolves the session cookie into a request identity. Unknown
// or expired sessions leave the request anonymous and clear the cookie.
func LoadSession(sessions auth.SessionStoreInterface, cookies *auth.CookieHelper, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := cookies.SessionID(c)
			if id == "" {
				return next(c)
			}

			user, err := sessions.Get(c.Request().Context(), id)
			switch {
			case errors.Is(err, auth.ErrSessionNotFound):
				cookies.ClearSession(c)
			case err != nil:
				logger.Warn().Err(err).Msg("session lookup failed")
			default:
				auth.SetIdentity(c, *user)
				auth.SetSessionID(c, id)
			}
			return next(c)
		}
	}
}

// ParseBearer validates an Authorization bearer token when the request has
// no session identity. Missing or invalid tokens leave the request
// anonymous; the gates decide what that means.
func ParseBearer(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			_, ok := auth.Identity(c)
			return ok
		},
		SigningKey:  jwtService.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  bearerTokenKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// BearerIdentity turns a parsed bearer token into the request identity
// unless the token was revoked, on its own or with all of its user's
// credentials.
func BearerIdentity(sessions auth.SessionStoreInterface, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := auth.Identity(c); ok {
				return next(c)
			}
			token, ok := c.Get(bearerTokenKey).(*jwt.Token)
			if !ok || !token.Valid {
				return next(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return next(c)
			}

			revoked, err := sessions.IsTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				logger.Warn().Err(err).Msg("token revocation lookup failed")
				return next(c)
			}
			if revoked {
				return next(c)
			}

			user, err := claims.Identity()
			if err != nil {
				return next(c)
			}
			revokedAt, err := sessions.RevokedAt(c.Request().Context(), user.ID)
			if err != nil {
				logger.Warn().Err(err).Msg("user revocation lookup failed")
				return next(c)
			}
			if !revokedAt.IsZero() && (claims.IssuedAt == nil || !claims.IssuedAt.After(revokedAt)) {
				return next(c)
			}
			auth.SetIdentity(c, user)
			auth.SetTokenClaims(c, claims)
			return next(c)
		}
	}
}
