package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/view"
)

func newEcho(t *testing.T, production bool) *echo.Echo {
	t.Helper()
	e := echo.New()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer
	e.HTTPErrorHandler = ErrorFunnel(zerolog.Nop(), production)
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func asPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth.SetRequestKind(c, auth.KindPage)
		return next(c)
	}
}

func TestErrorFunnel_API(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		production bool
		wantStatus int
		wantMsg    string
		wantFields []apperrors.FieldError
	}{
		{
			name:       "validation with field list",
			err:        apperrors.Validation("", apperrors.FieldError{Field: "email", Message: "email is required"}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    apperrors.MsgValidationFailed,
			wantFields: []apperrors.FieldError{{Field: "email", Message: "email is required"}},
		},
		{
			name:       "forbidden",
			err:        apperrors.Forbidden(),
			wantStatus: http.StatusForbidden,
			wantMsg:    apperrors.MsgForbidden,
		},
		{
			name:       "unauthorized stays json for api clients",
			err:        apperrors.Unauthorized(),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    apperrors.MsgUnauthorized,
		},
		{
			name:       "store duplicate key",
			err:        fmt.Errorf("create product: %w", apperrors.ErrDuplicateKey),
			wantStatus: http.StatusBadRequest,
			wantMsg:    apperrors.MsgDuplicateEntry,
		},
		{
			name:       "malformed id",
			err:        apperrors.MalformedID(errors.New("invalid UUID length")),
			wantStatus: http.StatusBadRequest,
			wantMsg:    apperrors.MsgInvalidID,
		},
		{
			name:       "internal in development exposes the message",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "db down",
		},
		{
			name:       "internal in production is generic",
			err:        errors.New("db down"),
			production: true,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    apperrors.MsgInternalProduction,
		},
		{
			name:       "echo errors keep their status",
			err:        echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests"),
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(t, tt.production)
			e.GET("/boom", func(c echo.Context) error { return tt.err })

			rec := serve(e, http.MethodGet, "/boom", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.wantFields, resp.Errors)
		})
	}
}

func TestErrorFunnel_UnknownRoute(t *testing.T) {
	rec := serve(newEcho(t, false), http.MethodGet, "/nowhere", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode(t, rec).Message)
}

func TestErrorFunnel_Pages(t *testing.T) {
	e := newEcho(t, false)
	e.GET("/admin", asPage(func(c echo.Context) error { return apperrors.Unauthorized() }))
	e.GET("/admin/users", asPage(func(c echo.Context) error { return apperrors.Forbidden() }))

	rec := serve(e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/admin/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Access Denied")
}

func TestErrorFunnel_SkipsCommittedResponses(t *testing.T) {
	e := newEcho(t, false)
	e.GET("/partial", func(c echo.Context) error {
		_ = c.String(http.StatusOK, "done")
		return errors.New("late failure")
	})

	rec := serve(e, http.MethodGet, "/partial", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestLogin(t *testing.T) {
	adminID := uuid.New()
	cookies := auth.NewCookieHelper(false, time.Hour)

	t.Run("admin lands on the back office", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "admin@example.com", "secret1").Return(&service.AuthResult{
			User:      model.PublicUser{ID: adminID, Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin},
			Token:     "signed.jwt",
			SessionID: "session-1",
		}, nil)

		e := newEcho(t, false)
		e.POST("/auth/login", Login(svc, cookies, metrics.New()))
		rec := serve(e, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"secret1"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.SessionCookie+"=session-1")

		var body struct {
			Success bool         `json:"success"`
			Message string       `json:"message"`
			Data    AuthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, MsgLoginSuccess, body.Message)
		assert.Equal(t, "/admin", body.Data.RedirectURL)
		assert.Equal(t, "signed.jwt", body.Data.Token)
		assert.Equal(t, adminID, body.Data.User.ID)
		svc.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "jane@example.com", "wrong-pass").Return(nil, apperrors.AuthenticationFailed())

		e := newEcho(t, false)
		e.POST("/auth/login", Login(svc, cookies, nil))
		rec := serve(e, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"wrong-pass"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperrors.MsgInvalidCredentials, decode(t, rec).Message)
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})

	t.Run("malformed body", func(t *testing.T) {
		e := newEcho(t, false)
		e.POST("/auth/login", Login(new(MockAuthService), cookies, nil))
		rec := serve(e, http.MethodPost, "/auth/login", `{"email":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegister(t *testing.T) {
	svc := new(MockAuthService)
	in := service.RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	svc.On("Register", mock.Anything, in).Return(&service.AuthResult{
		User:      model.PublicUser{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: model.RoleUser},
		Token:     "signed.jwt",
		SessionID: "session-2",
	}, nil)

	e := newEcho(t, false)
	e.POST("/auth/register", Register(svc, auth.NewCookieHelper(false, time.Hour), metrics.New()))
	rec := serve(e, http.MethodPost, "/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"secret1","confirmPassword":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, MsgUserCreated, resp.Message)
	assert.Equal(t, "/", resp.Data.(map[string]interface{})["redirectUrl"])
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session-2")
}

func TestLogout(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, "abc", (*auth.Claims)(nil)).Return(nil)

	e := newEcho(t, false)
	e.POST("/auth/logout", Logout(svc, auth.NewCookieHelper(false, time.Hour)))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	resp := decode(t, rec)
	assert.Equal(t, MsgLogoutSuccess, resp.Message)
	assert.Equal(t, "/auth/login", resp.Data.(map[string]interface{})["redirectUrl"])
	svc.AssertExpectations(t)
}

func TestProfile_RequiresIdentity(t *testing.T) {
	e := newEcho(t, false)
	e.GET("/auth/profile", Profile(new(MockAuthService)))

	rec := serve(e, http.MethodGet, "/auth/profile", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProducts_CoercesQuery(t *testing.T) {
	svc := new(MockProductService)
	minPrice := 10.0
	filter := model.ProductFilter{Category: "books", MinPrice: &minPrice, Search: "go"}
	page := model.NewPage(2, 5)
	svc.On("List", mock.Anything, filter, page).Return(&model.PagedProducts{
		Items:      []model.Product{{ID: uuid.New(), Name: "Go in Action"}},
		Pagination: model.NewPagination(page, 6),
	}, nil)

	e := newEcho(t, false)
	e.GET("/products/api/products", ListProducts(svc))
	rec := serve(e, http.MethodGet, "/products/api/products?page=2&limit=5&minPrice=10&category=books&search=go", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNext)
	assert.Len(t, resp.Data, 1)
	svc.AssertExpectations(t)
}

func TestListProducts_RejectsNonNumericPrice(t *testing.T) {
	e := newEcho(t, false)
	e.GET("/products/api/products", ListProducts(new(MockProductService)))

	rec := serve(e, http.MethodGet, "/products/api/products?maxPrice=cheap", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []apperrors.FieldError{{Field: "maxPrice", Message: "maxPrice must be a number"}}, decode(t, rec).Errors)
}

func TestListProducts_DefaultsPage(t *testing.T) {
	svc := new(MockProductService)
	svc.On("List", mock.Anything, model.ProductFilter{}, model.NewPage(1, model.DefaultPageLimit)).
		Return(&model.PagedProducts{Pagination: model.NewPagination(model.NewPage(1, 10), 0)}, nil)

	e := newEcho(t, false)
	e.GET("/products/api/products", ListProducts(svc))
	rec := serve(e, http.MethodGet, "/products/api/products?page=abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetProduct_MalformedID(t *testing.T) {
	svc := new(MockProductService)
	e := newEcho(t, false)
	e.GET("/products/api/products/:id", GetProduct(svc))

	rec := serve(e, http.MethodGet, "/products/api/products/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.MsgInvalidID, decode(t, rec).Message)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	id := uuid.New()
	svc := new(MockProductService)
	svc.On("GetByID", mock.Anything, id).Return(nil, apperrors.NotFound(service.MsgProductNotFound))

	e := newEcho(t, false)
	e.GET("/products/api/products/:id", GetProduct(svc))
	rec := serve(e, http.MethodGet, "/products/api/products/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.MsgProductNotFound, decode(t, rec).Message)
}

func TestCreateProduct(t *testing.T) {
	svc := new(MockProductService)
	created := &model.Product{ID: uuid.New(), Name: "Lamp", Slug: "lamp-1"}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in model.NewProduct) bool {
		return in.Name == "Lamp" && in.Price.Equal(decimal.RequireFromString("19.99")) && in.Stock == 3 && in.Category == model.CategoryHome
	})).Return(created, nil)

	e := newEcho(t, false)
	e.POST("/products/api/products", CreateProduct(svc))
	rec := serve(e, http.MethodPost, "/products/api/products",
		`{"name":"Lamp","description":"Warm light","price":19.99,"category":"home","stock":3}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, MsgProductCreated, decode(t, rec).Message)
	svc.AssertExpectations(t)
}

func TestAdjustStock_Insufficient(t *testing.T) {
	id := uuid.New()
	svc := new(MockProductService)
	svc.On("AdjustStock", mock.Anything, id, model.AdjustStock{Delta: -5}).Return(nil,
		apperrors.Validation("", apperrors.FieldError{Field: "delta", Message: service.MsgInsufficientStock}))

	e := newEcho(t, false)
	e.PATCH("/products/api/products/:id/stock", AdjustStock(svc))
	rec := serve(e, http.MethodPatch, "/products/api/products/"+id.String()+"/stock", `{"delta":-5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "delta", decode(t, rec).Errors[0].Field)
}

func TestDeleteUser(t *testing.T) {
	id := uuid.New()
	svc := new(MockUserService)
	svc.On("Delete", mock.Anything, id).Return(nil)

	e := newEcho(t, false)
	e.DELETE("/admin/api/users/:id", DeleteUser(svc))
	rec := serve(e, http.MethodDelete, "/admin/api/users/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, MsgUserDeleted, resp.Message)
	assert.Nil(t, resp.Data)
}

func TestHealth(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	e := newEcho(t, false)
	e.GET("/up", Health(up, up))
	e.GET("/down", Health(up, down))

	rec := serve(e, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(e, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
