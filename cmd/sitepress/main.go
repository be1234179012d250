package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/pipeline"
	"git.home.luguber.info/inful/sitepress/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitepress.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Production bool `short:"p" help:"Production build (minify, bundle)"`
	} `cmd:"" help:"Build the site from the source directory"`

	Watch struct {
		Every       time.Duration `help:"Also rebuild on a fixed interval (e.g. 10m)"`
		MetricsAddr string        `help:"Expose Prometheus metrics on this address (e.g. :9090)"`
	} `cmd:"" help:"Watch the source directory and rebuild on changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Build.Production {
			cfg.Production = true
		}
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration file created", "path", CLI.Config)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(CLI.Config)
}

func runBuild(cfg *config.Config) error {
	return pipeline.New(cfg).Run(context.Background())
}

func runWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []pipeline.Option{}
	if CLI.Watch.MetricsAddr != "" {
		registry := prom.NewRegistry()
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(registry)))
		go serveMetrics(CLI.Watch.MetricsAddr, registry)
	}

	rebuild := func(ctx context.Context) error {
		return pipeline.New(cfg, opts...).Run(ctx)
	}

	// Initial build so the dist tree exists before the first change.
	if err := rebuild(ctx); err != nil {
		slog.Warn("Initial build failed", "error", err)
	}

	w, err := watch.New(cfg.Src, CLI.Watch.Every, rebuild)
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(addr string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	slog.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics server stopped", "error", err)
	}
}
