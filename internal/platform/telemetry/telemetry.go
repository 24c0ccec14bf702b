// Package telemetry reports errors and recovered panics to Sentry. A Reporter
// built without a DSN, or a nil *Reporter, drops everything.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
	Debug       bool
}

type Reporter struct {
	hub *sentry.Hub
}

// NewReporter builds a Reporter. An empty DSN yields a disabled Reporter.
func NewReporter(cfg Config) (*Reporter, error) {
	if cfg.DSN == "" {
		return &Reporter{}, nil
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1.0
	}
	return newReporter(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       rate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

func newReporter(opts sentry.ClientOptions) (*Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

func (r *Reporter) hubFor(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return r.hub
}

// CaptureError sends err with tags attached. The request hub set by
// Middleware is preferred so events carry request data.
func (r *Reporter) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	hub := r.hubFor(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// Recover reports a recovered panic value.
func (r *Reporter) Recover(ctx context.Context, v interface{}) {
	if !r.Enabled() || v == nil {
		return
	}
	r.hubFor(ctx).RecoverWithContext(ctx, v)
}

// Flush waits up to timeout for queued events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

// Middleware attaches a per-request hub carrying the HTTP request to the
// request context.
func (r *Reporter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !r.Enabled() {
				return next(c)
			}
			hub := r.hub.Clone()
			req := c.Request()
			hub.Scope().SetRequest(req)
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				hub.Scope().SetTag("request_id", id)
			}
			ctx := sentry.SetHubOnContext(req.Context(), hub)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
