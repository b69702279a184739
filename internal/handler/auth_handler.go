package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/service"
)

// Messages returned by the auth endpoints.
const (
	MsgUserCreated      = "User created successfully"
	MsgLoginSuccess     = "Login successful"
	MsgLogoutSuccess    = "Logout successful"
	MsgProfileRetrieved = "Profile retrieved successfully"
)

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse is the data of a successful login or registration.
type AuthResponse struct {
	RedirectURL string           `json:"redirectUrl"`
	User        model.PublicUser `json:"user"`
	Token       string           `json:"token"`
}

// RedirectResponse carries the page the client should navigate to.
type RedirectResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// landingPage is where a user goes after signing in.
func landingPage(role model.Role) string {
	if role == model.RoleAdmin {
		return "/admin"
	}
	return "/"
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} Response{data=AuthResponse}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Router /auth/register [post]
func Register(svc service.AuthService, cookies *auth.CookieHelper, m *metrics.Metrics) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req service.RegisterInput
		if err := bind(c, &req); err != nil {
			return err
		}

		result, err := svc.Register(c.Request().Context(), req)
		if err != nil {
			return err
		}
		cookies.SetSession(c, result.SessionID)
		m.ObserveRegistration()

		return respond(c, http.StatusCreated, MsgUserCreated, AuthResponse{
			RedirectURL: "/",
			User:        result.User,
			Token:       result.Token,
		})
	}
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=AuthResponse}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /auth/login [post]
func Login(svc service.AuthService, cookies *auth.CookieHelper, m *metrics.Metrics) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req LoginRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		result, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindAuthentication {
				m.ObserveLogin(metrics.LoginFailed)
			}
			return err
		}
		cookies.SetSession(c, result.SessionID)
		m.ObserveLogin(metrics.LoginSucceeded)

		return respond(c, http.StatusOK, MsgLoginSuccess, AuthResponse{
			RedirectURL: landingPage(result.User.Role),
			User:        result.User,
			Token:       result.Token,
		})
	}
}

// Logout godoc
// @Summary Logout user
// @Description Destroys the session and revokes the bearer token, if any.
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=RedirectResponse}
// @Router /auth/logout [post]
func Logout(svc service.AuthService, cookies *auth.CookieHelper) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, _ := auth.TokenClaims(c)
		sessionID := auth.SessionID(c)
		if sessionID == "" {
			sessionID = cookies.SessionID(c)
		}

		if err := svc.Logout(c.Request().Context(), sessionID, claims); err != nil {
			return err
		}
		cookies.ClearSession(c)

		return respond(c, http.StatusOK, MsgLogoutSuccess, RedirectResponse{RedirectURL: "/auth/login"})
	}
}

// Profile godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.PublicUser}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /auth/profile [get]
func Profile(svc service.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := auth.Identity(c)
		if !ok {
			return apperrors.Unauthorized()
		}

		user, err := svc.Profile(c.Request().Context(), identity.ID)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProfileRetrieved, user)
	}
}
