package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/rxcheck/rxcheck/internal/domain/catalog"
	"github.com/rxcheck/rxcheck/internal/domain/clinician"
	"github.com/rxcheck/rxcheck/internal/domain/prescription"
	"github.com/rxcheck/rxcheck/internal/platform/auth"
	"github.com/rxcheck/rxcheck/internal/platform/blobstore"
	"github.com/rxcheck/rxcheck/internal/platform/db"
	"github.com/rxcheck/rxcheck/internal/platform/kvstore"
	"github.com/rxcheck/rxcheck/internal/platform/middleware"
)

func newServer(a *app) *echo.Echo {
	cfg := a.cfg

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(a.reporter.Middleware())
	e.Use(middleware.Recovery(a.logger, a.reporter))
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "Retry-After"},
	}))

	// Auth middleware
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		a.logger.Warn().Msg("development mode without AUTH_SIGNING_KEY: every request is treated as a clinician device")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	e.GET("/health", healthHandler(a))

	apiV1 := e.Group("/api/v1")

	// Rate limiting for routes that call the analysis backend
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	limit := middleware.RateLimit(rateLimitCfg)

	clinician.NewHandler(a.clinicians).RegisterRoutes(apiV1)
	catalog.NewHandler(a.catalog).RegisterRoutes(apiV1)
	prescription.NewHandler(a.prescriptions).RegisterRoutes(apiV1, limit)
	blobstore.NewHandler(a.reports).RegisterRoutes(apiV1.Group("", auth.RequireRole(auth.RoleClinician)))

	return e
}

func healthHandler(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := map[string]interface{}{
			"status":    "ok",
			"version":   version,
			"store":     a.cfg.StoreBackend,
			"evaluator": a.prescriptions.DefaultStrategy(),
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		var err error
		if a.pool != nil {
			h := db.CheckPool(ctx, a.pool)
			body["database"] = h
			if !h.Healthy {
				err = errors.New(h.Error)
			}
		} else if p, ok := a.store.(kvstore.Pinger); ok {
			err = p.Ping(ctx)
		}

		code := http.StatusOK
		if err != nil {
			a.logger.Error().Err(err).Msg("store health check failed")
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, body)
	}
}

func runServer() error {
	cfg, logger, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}
	defer a.Close(context.Background())

	e := newServer(a)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("evaluator", cfg.Evaluator).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
