// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"net"
	"strconv"

	"github.com/ManuGH/paramlab/internal/cache"
	"github.com/ManuGH/paramlab/internal/store"
	"github.com/ManuGH/paramlab/internal/telemetry"
	"github.com/ManuGH/paramlab/internal/validate"
)

var (
	storeBackends   = []string{store.BackendMemory, store.BackendSQLite, store.BackendBadger, store.BackendBolt}
	cacheBackends   = []string{cache.BackendNone, cache.BackendMemory, cache.BackendRedis}
	tracingExporter = []string{telemetry.ExporterNone, telemetry.ExporterGRPC, telemetry.ExporterHTTP}
)

// Validate reports every problem in cfg at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NotEmpty("api.title", cfg.API.Title)
	if cfg.Metrics.ListenAddr != "" {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
		v.Custom("metrics.listenAddr", cfg.Metrics.ListenAddr, func(addr any) error {
			if addr == cfg.API.ListenAddr {
				return errors.New("must differ from api.listenAddr")
			}
			return nil
		})
	}

	if _, err := validate.ParseLogLevel(cfg.Log.Level); err != nil {
		v.OneOf("log.level", cfg.Log.Level, validate.LogLevels)
	}

	v.OneOf("store.backend", cfg.Store.Backend, storeBackends)
	if cfg.Store.Backend != "" && cfg.Store.Backend != store.BackendMemory {
		v.NotEmpty("store.path", cfg.Store.Path)
	}

	v.OneOf("cache.backend", cfg.Cache.Backend, cacheBackends)
	if cfg.Cache.Backend != cache.BackendNone && cfg.Cache.TTL <= 0 {
		v.AddError("cache.ttl", "must be positive when caching is enabled", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == cache.BackendRedis {
		dialAddr(v, "cache.redisAddr", cfg.Cache.RedisAddr)
		v.Range("cache.redisDB", cfg.Cache.RedisDB, 0, 15)
	}

	v.NonNegative("rateLimit.requestsPerMinute", cfg.RateLimit.RequestsPerMinute)
	v.NonNegative("rateLimit.loginFailuresPerMinute", cfg.RateLimit.LoginFailuresPerMinute)
	if cfg.RateLimit.LoginFailuresPerMinute > 0 {
		v.Positive("rateLimit.loginBurst", cfg.RateLimit.LoginBurst)
	}

	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "*" {
			continue
		}
		v.URL("cors.allowedOrigins", origin, []string{"http", "https"})
	}

	if cfg.Uploads.Dir != "" {
		v.Directory("uploads.dir", cfg.Uploads.Dir, false)
	}
	if cfg.Uploads.MaxBodyBytes <= 0 {
		v.AddError("uploads.maxBodyBytes", "must be positive", cfg.Uploads.MaxBodyBytes)
	}

	v.OneOf("tracing.exporter", cfg.Tracing.Exporter, tracingExporter)
	if cfg.Tracing.Exporter != telemetry.ExporterNone {
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
	}
	v.FloatRange("tracing.sampleRate", cfg.Tracing.SampleRate, 0, 1)

	positiveDuration(v, "server.readTimeout", cfg.Server.ReadTimeout.Seconds())
	positiveDuration(v, "server.writeTimeout", cfg.Server.WriteTimeout.Seconds())
	positiveDuration(v, "server.idleTimeout", cfg.Server.IdleTimeout.Seconds())
	positiveDuration(v, "server.shutdownTimeout", cfg.Server.ShutdownTimeout.Seconds())
	v.Positive("server.maxHeaderBytes", cfg.Server.MaxHeaderBytes)
	v.NonNegative("server.maxConnections", cfg.Server.MaxConnections)

	return v.Err()
}

// dialAddr checks a host:port the daemon connects to. Unlike a listen
// address it needs a host and a non-zero port.
func dialAddr(v *validate.Validator, field, addr string) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		v.AddError(field, "must be host:port", addr)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(field, "invalid port "+strconv.Quote(portStr), addr)
		return
	}
	v.Port(field, port)
}

func positiveDuration(v *validate.Validator, field string, seconds float64) {
	if seconds <= 0 {
		v.AddError(field, "must be a positive duration", seconds)
	}
}
