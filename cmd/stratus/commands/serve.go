package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/telemetry"
	"github.com/stratuslocal/stratus/pkg/config"
	"github.com/stratuslocal/stratus/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emulator",
	Long: `Start every enabled service on its configured port, plus the admin
listener serving /health and /metrics.

Runs with built-in defaults when no configuration file exists; use --config
or $XDG_CONFIG_HOME/stratus/config.yaml to customize ports, region, account,
logging, and telemetry.

Examples:
  # Start with defaults (us-east-1 / 000000000000, standard ports)
  stratus serve

  # Start with a custom config file
  stratus serve --config /etc/stratus/config.yaml

  # Override settings through the environment
  STRATUS_LOGGING_LEVEL=DEBUG STRATUS_REGION=eu-west-1 stratus serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "stratus",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "stratus",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("starting stratus", "version", Version, "region", cfg.Region, "account", cfg.Account)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	reg, err := config.InitializeRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	for _, svc := range reg.Services() {
		logger.Info("service enabled", "service", svc.Name, "port", svc.Port)
	}
	for _, name := range cfg.Services.Disabled {
		logger.Info("service disabled", "service", name)
	}

	srv := server.New(reg, cfg.Admin.Port, cfg.ShutdownTimeout)
	logger.Info("admin endpoints", "port", cfg.Admin.Port,
		"health", fmt.Sprintf("http://localhost:%d/health", cfg.Admin.Port),
		"metrics", fmt.Sprintf("http://localhost:%d/metrics", cfg.Admin.Port))

	return srv.Serve(ctx)
}
