package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/logging"
)

var (
	configPath string
	schemaPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "bulkhead-sim",
	Short: "Bulkhead queue dynamics simulator",
	Long:  "bulkhead-sim simulates per-service connection pools under changing latency and teaches the bulkhead pattern.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(logLevel, logFormat, os.Stderr))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML (empty for built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (empty for the embedded schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// loadConfig reads the configuration and applies environment overrides.
func loadConfig() (*config.SimulationConfig, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath, schemaPath)
		if err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *config.SimulationConfig) error {
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid TICK_INTERVAL: %s must be positive", v)
		}
		cfg.TickInterval = d
	}
	if v := os.Getenv("RUN_ID"); v != "" {
		cfg.RunID = v
	}
	return nil
}
