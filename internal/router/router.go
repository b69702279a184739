// Package router is the routing table: every route with its ordered gate
// list and handler.
package router

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	mw "storefront/internal/middleware"
	"storefront/internal/ratelimit"
	"storefront/internal/service"
	"storefront/internal/validation"
	"storefront/internal/view"
)

// BodyLimit caps request bodies.
const BodyLimit = "10M"

// Deps are the collaborators the routing table wires together.
type Deps struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Auth     service.AuthService
	Users    service.UserService
	Products service.ProductService
	Admin    service.AdminService
	JWT      *auth.JWTService
	Sessions auth.SessionStoreInterface
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	Health   []handler.Pinger
}

// Register wires middleware and routes.
func Register(e *echo.Echo, d Deps) error {
	cfg := d.Config
	extractor, err := clientIP(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	e.IPExtractor = extractor

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = handler.ErrorFunnel(d.Logger, cfg.IsProduction())

	cookies := auth.NewCookieHelper(cfg.IsProduction(), cfg.SessionTTL)

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(d.Metrics.Middleware())
	e.Use(mw.RequestLogger(d.Logger))
	e.Use(echomw.BodyLimit(BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins(cfg.AllowedOrigins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Requested-With"},
		AllowCredentials: len(cfg.AllowedOrigins) > 0,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	e.Use(mw.ClassifyRequest())
	e.Use(mw.LoadSession(d.Sessions, cookies, d.Logger))
	e.Use(mw.ParseBearer(d.JWT))
	e.Use(mw.BearerIdentity(d.Sessions, d.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(mw.CSRF(mw.CSRFConfig{
			// Only cookie sessions ride along on cross-site requests.
			Skipper: func(c echo.Context) bool {
				return cookies.SessionID(c) == ""
			},
			AllowedOrigins: cfg.AllowedOrigins,
		}))
	}

	e.GET("/healthz", handler.Health(d.Health...))
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	throttle := func(scope string) echo.MiddlewareFunc {
		return ratelimit.Middleware(d.Limiter, ratelimit.Config{
			Scope:  scope,
			Limit:  cfg.RateLimit,
			Window: cfg.RateLimitWindow,
		}, d.Logger)
	}

	// Profile is reachable by browser navigation; an anonymous visit is sent
	// to the login page.
	authGroup := e.Group("/auth")
	authGroup.POST("/register", handler.Register(d.Auth, cookies, d.Metrics),
		mw.ForceAPI(), mw.RedirectIfAuthenticated(), throttle("register"), mw.Validate(validation.RegisterSchema))
	authGroup.POST("/login", handler.Login(d.Auth, cookies, d.Metrics),
		mw.ForceAPI(), throttle("login"), mw.Validate(validation.LoginSchema))
	authGroup.POST("/logout", handler.Logout(d.Auth, cookies), mw.ForceAPI())
	authGroup.GET("/profile", handler.Profile(d.Auth), mw.RequireAuth())

	products := e.Group("/products/api", mw.ForceAPI())
	products.GET("/products", handler.ListProducts(d.Products))
	products.GET("/products/:id", handler.GetProduct(d.Products))
	products.GET("/search", handler.SearchProducts(d.Products))
	products.GET("/categories", handler.ListCategories(d.Products))
	products.GET("/featured", handler.FeaturedProducts(d.Products))
	products.GET("/slug/:slug", handler.GetProductBySlug(d.Products))
	products.POST("/products", handler.CreateProduct(d.Products),
		adminOnly(mw.Validate(validation.ProductCreateSchema))...)
	products.PUT("/products/:id", handler.UpdateProduct(d.Products),
		adminOnly(mw.Validate(validation.ProductUpdateSchema))...)
	products.PATCH("/products/:id/stock", handler.AdjustStock(d.Products),
		adminOnly(mw.Validate(validation.StockAdjustSchema))...)
	products.DELETE("/products/:id", handler.DeleteProduct(d.Products), adminOnly()...)

	admin := e.Group("/admin/api", append([]echo.MiddlewareFunc{mw.ForceAPI()}, adminOnly()...)...)
	admin.GET("/stats", handler.DashboardStats(d.Admin))
	admin.GET("/users", handler.ListUsers(d.Users))
	admin.GET("/users/:id", handler.GetUser(d.Users))
	admin.PUT("/users/:id", handler.UpdateUser(d.Users), mw.Validate(validation.UserUpdateSchema))
	admin.DELETE("/users/:id", handler.DeleteUser(d.Users))

	return nil
}

// adminOnly is the gate list of back-office routes followed by extra.
func adminOnly(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{mw.RequireAuth(), mw.RequireAdmin()}, extra...)
}

// clientIP reads the client address from the connection unless trusted
// proxies are configured, in which case X-Forwarded-For is honoured for hops
// inside those ranges only.
func clientIP(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

func corsOrigins(allowed []string) []string {
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}
