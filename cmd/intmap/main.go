package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"intmap/internal/app"
	"intmap/internal/config"
	"intmap/internal/format"
	"intmap/internal/observability"
)

var (
	configPath   = flag.String("config", "./intmap.toml", "Path to config file")
	root         = flag.String("root", "", "Codebase root to analyze (overrides config)")
	file         = flag.String("file", "", "Analyze a single file instead of a directory tree")
	output       = flag.String("output", "", "Output path, '-' for stdout (overrides config)")
	outFormat    = flag.String("format", "", "Output format: verbose or compact (overrides config)")
	contextAware = flag.Bool("context-aware", false, "Shorthand for --format compact")
	exclude      = flag.String("exclude", "", "Comma-separated directory patterns to exclude")
	decodePath   = flag.String("decode", "", "Decode a compact map file back to verbose form and exit")
	watch        = flag.Bool("watch", false, "Watch the root and re-analyze on change")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	metricsAddr  = flag.String("metrics-addr", "", "Listen address for /metrics and /health (overrides config)")
	version      = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("intmap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	if *decodePath != "" {
		if err := decode(*decodePath, cfg.Output.Path); err != nil {
			slog.Error("decode failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observe.ListenAddr != "" {
		srv := observability.NewServer(cfg.Observe.ListenAddr)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		defer srv.Stop(context.Background())
	}
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observe.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var res *format.Result
	if *file != "" {
		res, err = a.AnalyzeFile(ctx, *file)
	} else {
		res, err = a.Analyze(ctx)
	}
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}
	if err := a.WriteOutput(res); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}

	if *watch {
		if *file != "" {
			slog.Error("--watch cannot be combined with --file")
			os.Exit(1)
		}
		if err := a.StartWatcher(ctx); err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		slog.Info("watching for changes", "root", cfg.Root)
		<-ctx.Done()
	}
}

func applyFlags(cfg *config.Config) {
	if *root != "" {
		cfg.Root = *root
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if *outFormat != "" {
		cfg.Output.Format = *outFormat
	}
	if *contextAware {
		cfg.Output.Format = "compact"
	}
	if *exclude != "" {
		for _, pattern := range strings.Split(*exclude, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, pattern)
			}
		}
	}
	if *metricsAddr != "" {
		cfg.Observe.ListenAddr = *metricsAddr
	}
}

// decode rehydrates a compact map into its verbose form. The two encodings
// carry the same information, so this is lossless.
func decode(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	res, err := format.Decode(data)
	if err != nil {
		return err
	}
	return format.WriteFile(outPath, format.EncodeVerbose(res), true)
}
