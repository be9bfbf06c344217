package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanprep/internal/config"
	"loanprep/internal/exporter"
	"loanprep/internal/infrastructure"
	"loanprep/internal/operations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one pipeline run and returns the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("loanprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file (defaults to loanprep.yaml or configs/loanprep.yaml if present)")
	inPath := fs.String("in", "", "input CSV or .xlsx file (overrides pipeline.input_path)")
	outPath := fs.String("out", "", "output CSV file (overrides pipeline.output_path)")
	encoder := fs.String("encoder", "", "categorical encoding policy: ordinal or onehot")
	clip := fs.Bool("clip", true, "clip outliers to the IQR fence before scaling")
	manifest := fs.Bool("manifest", false, "write a JSON run manifest next to the output file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(*configFile, func(c *config.Config) {
		if *inPath != "" {
			c.Pipeline.InputPath = *inPath
		}
		if *outPath != "" {
			c.Pipeline.OutputPath = *outPath
		}
		if *encoder != "" {
			c.Pipeline.Encoder = *encoder
		}
		if set["clip"] {
			c.Pipeline.Outliers.Enabled = *clip
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "loanprep: %v\n", err)
		return 1
	}
	if *manifest && cfg.Pipeline.ManifestPath == "" {
		cfg.Pipeline.ManifestPath = config.DefaultManifestPath(cfg.Pipeline.OutputPath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "loanprep: failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		fmt.Fprintf(stderr, "loanprep: failed to initialize telemetry: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", slog.String("error", err.Error()))
		}
	}()

	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	err = execute(ctx, cfg, providers, logger, runID)

	if mErr := providers.WriteMetricsFile(cfg.Telemetry.MetricsFile); mErr != nil {
		logger.WarnContext(ctx, "metrics_file_write_failed",
			slog.String("path", cfg.Telemetry.MetricsFile),
			slog.String("error", mErr.Error()))
	}

	if err != nil {
		logger.ErrorContext(ctx, "run_failed",
			slog.String("failed_step", operations.FailedStep(err)),
			slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "loanprep: %v\n", err)
		return 1
	}
	return 0
}

// execute builds the pipeline, runs it and records the manifest on success
func execute(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger, runID string) error {
	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return err
	}
	registry, err := operations.NewPipelineRegistry(cfg.Pipeline, exporter.NewCSVWriter(false), logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "run_started",
		slog.String("input_path", cfg.Pipeline.InputPath),
		slog.String("output_path", cfg.Pipeline.OutputPath),
		slog.String("encoder", cfg.Pipeline.Encoder),
		slog.Bool("outlier_clipping", cfg.Pipeline.Outliers.Enabled))

	state, err := operations.NewManager(registry, tracer).Execute(ctx, operations.OperationRequest{ID: runID})
	if err != nil {
		return err
	}

	if cfg.Pipeline.ManifestPath != "" {
		m := operations.NewRunManifest(state, cfg.Pipeline)
		if err := m.SaveToFile(cfg.Pipeline.ManifestPath); err != nil {
			return err
		}
		logger.InfoContext(ctx, "manifest_written", slog.String("path", cfg.Pipeline.ManifestPath))
	}

	logger.InfoContext(ctx, "run_completed",
		slog.String("output_path", cfg.Pipeline.OutputPath),
		slog.Int("rows", state.Table().NumRows()),
		slog.Duration("duration", state.Duration()))
	return nil
}
