package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"

	"storefront/docs"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/store"
)

const shutdownTimeout = 30 * time.Second

// @title Storefront API
// @version 1.0
// @description Storefront back end: session and token authentication, product catalog and back-office user management.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, closeLog, err := logging.Open(cfg)
	if err != nil {
		log.Fatalf("logging init: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("db_driver", cfg.DBDriver).Msg("database init")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup")
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	sessions := auth.NewSessionStore(cacheClient, cfg.SessionTTL, auth.WithTokenExpiry(cfg.JWTExpiry))

	// Initialize services
	authService, err := service.NewAuthService(st.Users, jwtService, sessions, cfg.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth service init")
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if err := router.Register(e, router.Deps{
		Config:   cfg,
		Logger:   logger,
		Auth:     authService,
		Users:    service.NewUserService(st.Users, sessions),
		Products: service.NewProductService(st.Products),
		Admin:    service.NewAdminService(st.Users, st.Products),
		JWT:      jwtService,
		Sessions: sessions,
		Limiter:  ratelimit.NewLimiter(cacheClient.Redis(), "ratelimit"),
		Metrics:  metrics.New(),
		Health:   []handler.Pinger{handler.PingFunc(st.Ping), cacheClient},
	}); err != nil {
		logger.Fatal().Err(err).Msg("router init")
	}

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("db_driver", cfg.DBDriver).
			Str("environment", cfg.Environment).
			Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// The server drains before the stores it depends on are closed.
	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"storefront": func(ctx context.Context) error {
			logger.Info().Msg("graceful shutdown initiated")
			return errors.Join(
				e.Shutdown(ctx),
				st.Close(ctx),
				cacheClient.Close(),
			)
		},
	})

	exitCode := <-wait
	logger.Info().Int("exit_code", exitCode).Msg("server stopped")
	_ = closeLog()
	os.Exit(exitCode)
}
