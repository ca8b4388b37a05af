// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads paramlab's runtime configuration.
//
// Precedence is defaults, then the YAML file, then PARAMLAB_* environment
// variables. The merged result is validated before it is handed out.
package config

import "time"

// AppConfig is the fully merged runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	CORS      CORSConfig      `yaml:"cors"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Server    ServerConfig    `yaml:"server"`
}

// APIConfig configures the public HTTP surface.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	Title      string `yaml:"title"`
}

// MetricsConfig configures the Prometheus listener. An empty address
// disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// StoreConfig selects the key/value backend. Path is ignored by the memory
// backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
}

type RateLimitConfig struct {
	// RequestsPerMinute caps requests per client IP; zero disables.
	RequestsPerMinute int      `yaml:"requestsPerMinute"`
	Whitelist         []string `yaml:"whitelist"`
	// LoginFailuresPerMinute throttles failed logins per client IP.
	LoginFailuresPerMinute int `yaml:"loginFailuresPerMinute"`
	LoginBurst             int `yaml:"loginBurst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// UploadsConfig controls where uploaded files are kept. An empty Dir keeps
// uploads in memory only.
type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"`
}

type TracingConfig struct {
	// Exporter is one of none, grpc or http.
	Exporter   string  `yaml:"exporter"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sampleRate"`
}

// ServerConfig holds HTTP server timeouts and limits.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
	// MaxConnections caps concurrent API connections; zero means unlimited.
	MaxConnections int `yaml:"maxConnections"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() AppConfig {
	return AppConfig{
		API: APIConfig{
			ListenAddr: ":8000",
			Title:      "paramlab",
		},
		Log: LogConfig{
			Level:   "info",
			Service: "paramlab",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     time.Minute,
		},
		RateLimit: RateLimitConfig{
			LoginFailuresPerMinute: 5,
			LoginBurst:             5,
		},
		Uploads: UploadsConfig{
			MaxBodyBytes: 32 << 20,
		},
		Tracing: TracingConfig{
			Exporter:   "none",
			SampleRate: 1.0,
		},
		Server: ServerConfig{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxHeaderBytes:  1 << 20,
		},
	}
}
