// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/paramlab/internal/api"
	"github.com/ManuGH/paramlab/internal/api/middleware"
	"github.com/ManuGH/paramlab/internal/cache"
	"github.com/ManuGH/paramlab/internal/catalog"
	"github.com/ManuGH/paramlab/internal/config"
	"github.com/ManuGH/paramlab/internal/health"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/ratelimit"
	"github.com/ManuGH/paramlab/internal/store"
	"github.com/ManuGH/paramlab/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const cacheCleanupInterval = time.Minute

// Runtime is the assembled application: the API plus the resources that
// must be released on shutdown.
type Runtime struct {
	API    *api.Server
	Health *health.Manager

	metrics http.Handler
	hooks   []namedHook
}

// Bootstrap opens the store and cache, seeds the catalog, installs tracing
// and builds the API server from cfg. Resources opened before a failure are
// released before returning.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (_ *Runtime, err error) {
	logger := log.WithComponent("daemon")
	rt := &Runtime{}
	defer func() {
		if err != nil {
			if closeErr := rt.Close(ctx); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
		}
	}()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Exporter != telemetry.ExporterNone,
		ServiceName:    cfg.Log.Service,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	rt.addHook("tracer", tracing.Shutdown)

	kv, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.addHook("store", func(context.Context) error { return kv.Close() })

	c, err := cache.New(ctx, cache.Config{
		Backend:         cfg.Cache.Backend,
		CleanupInterval: cacheCleanupInterval,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Log.Service + ":",
		},
	}, log.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	rt.addHook("cache", func(context.Context) error { return c.Close() })

	catalogLogger := log.WithComponent("catalog")
	svc := catalog.New(catalog.Options{
		Store:    kv,
		Cache:    c,
		CacheTTL: cfg.Cache.TTL,
		Throttle: ratelimit.NewLoginThrottle(ratelimit.Config{
			FailuresPerMinute: cfg.RateLimit.LoginFailuresPerMinute,
			Burst:             cfg.RateLimit.LoginBurst,
		}),
		Logger: &catalogLogger,
	})
	if err := svc.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewPingChecker("store", true, kv.Ping))
	rt.Health.RegisterChecker(health.NewPingChecker("cache", false, c.Ping))
	if cfg.Uploads.Dir != "" {
		rt.Health.RegisterChecker(health.NewDirChecker("uploads", cfg.Uploads.Dir))
	}

	tracingService := ""
	if cfg.Tracing.Exporter != telemetry.ExporterNone {
		tracingService = cfg.Log.Service
	}
	rt.API, err = api.New(api.Config{
		Title:   cfg.API.Title,
		Version: cfg.Version,
		Stack: middleware.StackConfig{
			EnableCORS:            len(cfg.CORS.AllowedOrigins) > 0,
			AllowedOrigins:        cfg.CORS.AllowedOrigins,
			EnableSecurityHeaders: true,
			EnableMetrics:         cfg.Metrics.ListenAddr != "",
			TracingService:        tracingService,
			EnableLogging:         true,
			RateLimitRPM:          cfg.RateLimit.RequestsPerMinute,
			RateLimitWhitelist:    cfg.RateLimit.Whitelist,
		},
		UploadsDir:   cfg.Uploads.Dir,
		MaxBodyBytes: cfg.Uploads.MaxBodyBytes,
	}, svc, rt.Health)
	if err != nil {
		return nil, fmt.Errorf("build api: %w", err)
	}

	if cfg.Metrics.ListenAddr != "" {
		rt.metrics = promhttp.Handler()
	}

	logger.Info().
		Str("event", "daemon.bootstrapped").
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("tracing", cfg.Tracing.Exporter).
		Bool("uploads_persisted", cfg.Uploads.Dir != "").
		Msg("runtime assembled")
	return rt, nil
}

func (rt *Runtime) addHook(name string, hook ShutdownHook) {
	rt.hooks = append(rt.hooks, namedHook{name: name, hook: hook})
}

// Deps returns manager dependencies serving this runtime.
func (rt *Runtime) Deps(cfg config.AppConfig, logger zerolog.Logger) Deps {
	return Deps{
		Logger:         logger,
		APIAddr:        cfg.API.ListenAddr,
		APIHandler:     rt.API.Handler(),
		MetricsAddr:    cfg.Metrics.ListenAddr,
		MetricsHandler: rt.metrics,
	}
}

// RegisterHooks hands the runtime's cleanup to m. Hooks run LIFO, so the
// store and cache close before the tracer flushes.
func (rt *Runtime) RegisterHooks(m Manager) {
	for _, h := range rt.hooks {
		m.RegisterShutdownHook(h.name, h.hook)
	}
	rt.hooks = nil
}

// Close releases resources directly when no manager took ownership.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.hooks) - 1; i >= 0; i-- {
		if err := rt.hooks[i].hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.hooks[i].name, err))
		}
	}
	rt.hooks = nil
	return errors.Join(errs...)
}
