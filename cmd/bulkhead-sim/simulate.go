package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bulkhead-sim/internal/admin"
	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/scenario"
	"bulkhead-sim/internal/sim"
)

var (
	simPrintOnly bool
	simTick      time.Duration
	simLogFile   string
	simScenario  string
	simAdminAddr string
	simNoAdmin   bool
	simDuration  time.Duration
	simChaos     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the headless queue simulator",
	Long:  "simulate ticks every configured service, writes samples to STDOUT, GreptimeDB, Redis or a log file, and serves the admin UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("tick") {
			cfg.TickInterval = simTick
		}
		if simAdminAddr != "" {
			cfg.AdminAddr = simAdminAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if simDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, simDuration)
			defer cancel()
		}
		log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-format") {
			log = slog.Default()
		}
		ctx = logging.NewContext(ctx, log)

		writer, cleanup, err := newWriters(ctx, cfg, simPrintOnly, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		var runner *scenario.Runner
		opts := []sim.Option{
			sim.WithMetrics(sim.NewMetrics(reg)),
			sim.WithLogger(log),
			sim.WithTickHook(func(ctx context.Context, snap sim.Snapshot) {
				if runner != nil {
					runner.Hook()(ctx, snap)
				}
			}),
		}
		simulator := sim.NewSimulator(cfg, writer, opts...)

		if simScenario != "" {
			sc, err := resolveScenario(simScenario)
			if err != nil {
				return err
			}
			if runner, err = scenario.NewRunner(sc, simulator); err != nil {
				return err
			}
			runner.WithLogger(log)
		}
		if simChaos {
			simulator.ToggleChaos()
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return simulator.Run(gctx) })
		if !simNoAdmin {
			srv := admin.NewServer(simulator, reg)
			g.Go(func() error { return srv.Start(gctx, cfg.AdminAddr) })
		}
		err = g.Wait()

		snap := simulator.Snapshot()
		log.Info("simulation stopped", "run_id", snap.RunID, "ticks", snap.Tick)
		return err
	},
}

// resolveScenario accepts a built-in scenario name or a YAML path.
func resolveScenario(ref string) (*scenario.Scenario, error) {
	if sc, ok := scenario.BuiltIn()[ref]; ok {
		return &sc, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("scenario %q is neither built in nor a readable file: %w", ref, err)
	}
	return scenario.Load(ref)
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print samples to STDOUT instead of writing to GreptimeDB or Redis")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Tick interval (e.g. 100ms, 1s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export samples (JSONL)")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or scenario YAML path")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Admin UI listen address (overrides config)")
	simulateCmd.Flags().BoolVar(&simNoAdmin, "no-admin", false, "Do not start the admin UI")
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	simulateCmd.Flags().BoolVar(&simChaos, "chaos", false, "Start with chaos mode on")
}
