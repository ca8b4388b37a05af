// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command daemon serves the paramlab API.
//
// Usage:
//
//	daemon [-config paramlab.yaml] [-strict-env]
//	daemon -print-openapi [-format yaml|json]
//	daemon -version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/paramlab/internal/config"
	"github.com/ManuGH/paramlab/internal/daemon"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath   string
	strictEnv    bool
	showVersion  bool
	printOpenAPI bool
	format       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (YAML); defaults to $"+config.EnvConfigPath)
	fs.BoolVar(&opts.strictEnv, "strict-env", false, "fail on unknown "+config.EnvPrefix+"* environment variables")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.BoolVar(&opts.printOpenAPI, "print-openapi", false, "print the OpenAPI document and exit")
	fs.StringVar(&opts.format, "format", "yaml", "output format for -print-openapi (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.configPath == "" {
		opts.configPath = strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	}
	if opts.format != "yaml" && opts.format != "json" {
		return options{}, fmt.Errorf("unsupported -format %q", opts.format)
	}
	return opts, nil
}

// run returns the process exit code: 0 on clean shutdown, 1 on runtime
// failure, 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 2
	}

	if opts.showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Service: "paramlab", Version: version.Version, Output: stderr})
	logger := log.WithComponent("daemon")

	loader := config.NewLoader(opts.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", opts.configPath).
			Msg("failed to load configuration")
		return 1
	}
	if err := loader.ValidateEnvUsage(opts.strictEnv); err != nil {
		logger.Error().Err(err).Str("event", "config.env_rejected").Msg("unknown environment variables")
		return 1
	}

	log.Configure(log.Config{Level: cfg.Log.Level, Service: cfg.Log.Service, Version: cfg.Version, Output: stderr})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if opts.configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", opts.configPath).
		Msg("configuration loaded")

	rt, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("event", "daemon.bootstrap_failed").Msg("failed to assemble runtime")
		return 1
	}

	if opts.printOpenAPI {
		return printOpenAPI(ctx, rt, opts.format, stdout, stderr)
	}

	mgr, err := daemon.NewManager(cfg.Server, rt.Deps(cfg, logger))
	if err != nil {
		logger.Error().Err(err).Msg("failed to create daemon manager")
		return 1
	}
	rt.RegisterHooks(mgr)

	var holder *config.ConfigHolder
	if opts.configPath != "" {
		holder = config.NewConfigHolder(cfg, loader)
	}

	logger.Info().
		Str("event", "daemon.start").
		Str("version", version.String()).
		Str("listen", cfg.API.ListenAddr).
		Str("metrics", cfg.Metrics.ListenAddr).
		Msg("starting paramlab")

	if err := daemon.NewApp(logger, mgr, holder).Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon stopped with error")
		return 1
	}
	logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
	return 0
}

func printOpenAPI(ctx context.Context, rt *daemon.Runtime, format string, stdout, stderr io.Writer) int {
	doc := rt.API.Document()
	out := doc.YAML
	if format == "json" {
		out = doc.JSON
	}
	code := 0
	if _, err := stdout.Write(out); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		code = 1
	}
	if err := rt.Close(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		code = 1
	}
	return code
}
