// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys read by the loader.
const (
	EnvListen              = EnvPrefix + "LISTEN"
	EnvAPITitle            = EnvPrefix + "API_TITLE"
	EnvMetricsListen       = EnvPrefix + "METRICS_LISTEN"
	EnvLogLevel            = EnvPrefix + "LOG_LEVEL"
	EnvLogService          = EnvPrefix + "LOG_SERVICE"
	EnvStoreBackend        = EnvPrefix + "STORE_BACKEND"
	EnvStorePath           = EnvPrefix + "STORE_PATH"
	EnvCacheBackend        = EnvPrefix + "CACHE_BACKEND"
	EnvCacheTTL            = EnvPrefix + "CACHE_TTL"
	EnvRedisAddr           = EnvPrefix + "REDIS_ADDR"
	EnvRedisPassword       = EnvPrefix + "REDIS_PASSWORD"
	EnvRedisDB             = EnvPrefix + "REDIS_DB"
	EnvRateLimitRPM        = EnvPrefix + "RATE_LIMIT_RPM"
	EnvRateLimitWhitelist  = EnvPrefix + "RATE_LIMIT_WHITELIST"
	EnvLoginFailures       = EnvPrefix + "LOGIN_MAX_FAILURES_PER_MIN"
	EnvLoginBurst          = EnvPrefix + "LOGIN_BURST"
	EnvCORSOrigins         = EnvPrefix + "CORS_ORIGINS"
	EnvUploadsDir          = EnvPrefix + "UPLOADS_DIR"
	EnvMaxUploadBytes      = EnvPrefix + "MAX_UPLOAD_BYTES"
	EnvTracingExporter     = EnvPrefix + "TRACING_EXPORTER"
	EnvTracingEndpoint     = EnvPrefix + "TRACING_ENDPOINT"
	EnvTracingSampleRate   = EnvPrefix + "TRACING_SAMPLE_RATE"
	EnvServerReadTimeout   = EnvPrefix + "SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout  = EnvPrefix + "SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout   = EnvPrefix + "SERVER_IDLE_TIMEOUT"
	EnvServerShutdown      = EnvPrefix + "SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMaxHeader     = EnvPrefix + "SERVER_MAX_HEADER_BYTES"
	EnvServerMaxConnection = EnvPrefix + "MAX_CONNECTIONS"
	EnvConfigPath          = EnvPrefix + "CONFIG"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath loads
// defaults and environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseStringList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The merged result is validated before it is returned.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadFile decodes a strict YAML document over cfg. Keys absent from the
// file keep their current value.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

// mergeEnvConfig merges environment variables into cfg.
// ENV variables have the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.Title = l.envString(EnvAPITitle, cfg.API.Title)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsListen, cfg.Metrics.ListenAddr)

	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Service = l.envString(EnvLogService, cfg.Log.Service)

	cfg.Store.Backend = l.envString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Store.Path = l.envString(EnvStorePath, cfg.Store.Path)

	cfg.Cache.Backend = l.envString(EnvCacheBackend, cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt(EnvRedisDB, cfg.Cache.RedisDB)

	cfg.RateLimit.RequestsPerMinute = l.envInt(EnvRateLimitRPM, cfg.RateLimit.RequestsPerMinute)
	cfg.RateLimit.Whitelist = l.envList(EnvRateLimitWhitelist, cfg.RateLimit.Whitelist)
	cfg.RateLimit.LoginFailuresPerMinute = l.envInt(EnvLoginFailures, cfg.RateLimit.LoginFailuresPerMinute)
	cfg.RateLimit.LoginBurst = l.envInt(EnvLoginBurst, cfg.RateLimit.LoginBurst)

	cfg.CORS.AllowedOrigins = l.envList(EnvCORSOrigins, cfg.CORS.AllowedOrigins)

	cfg.Uploads.Dir = l.envString(EnvUploadsDir, cfg.Uploads.Dir)
	cfg.Uploads.MaxBodyBytes = l.envInt64(EnvMaxUploadBytes, cfg.Uploads.MaxBodyBytes)

	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRate = l.envFloat(EnvTracingSampleRate, cfg.Tracing.SampleRate)

	cfg.Server.ReadTimeout = l.envDuration(EnvServerReadTimeout, cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(EnvServerWriteTimeout, cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration(EnvServerIdleTimeout, cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvServerShutdown, cfg.Server.ShutdownTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt(EnvServerMaxHeader, cfg.Server.MaxHeaderBytes)
	cfg.Server.MaxConnections = l.envInt(EnvServerMaxConnection, cfg.Server.MaxConnections)

	// Read by cmd/daemon, not by the loader.
	l.ConsumedEnvKeys[EnvConfigPath] = struct{}{}
}

// UnknownEnvKeys lists PARAMLAB_* variables in environ that Load did not
// consume, sorted. Call it after Load.
func (l *Loader) UnknownEnvKeys(environ []string) []string {
	var unknown []string
	for _, pair := range environ {
		key, _, _ := strings.Cut(pair, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; ok {
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	return unknown
}

// ValidateEnvUsage detects unknown PARAMLAB_* keys (dead flags or typos).
// They are logged; in strict mode they fail the check.
func (l *Loader) ValidateEnvUsage(strict bool) error {
	unknown := l.UnknownEnvKeys(os.Environ())
	if len(unknown) == 0 {
		return nil
	}
	logger := configLogger()
	for _, key := range unknown {
		logger.Warn().
			Str("event", "config.unknown_env").
			Str("key", key).
			Msg("ignoring unknown environment variable")
	}
	if strict {
		return fmt.Errorf("%w: %s", ErrUnknownEnvKey, strings.Join(unknown, ", "))
	}
	return nil
}
