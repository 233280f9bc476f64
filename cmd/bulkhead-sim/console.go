package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"bulkhead-sim/internal/console"
	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/sim"
)

var (
	consolePaused  bool
	consoleLogFile string
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Drive a live simulator from an interactive prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "bulkhead> ",
			AutoComplete:    console.Completer(cfg.ServiceIDs()),
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		var sink sim.SampleWriter
		if consoleLogFile != "" {
			fw, err := sim.NewFileWriter(consoleLogFile)
			if err != nil {
				return err
			}
			defer fw.Close()
			sink = fw
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		log := logging.New("warn", logFormat, rl.Stderr())
		simulator := sim.NewSimulator(cfg, sink, sim.WithLogger(log))
		defer simulator.Stop()
		if !consolePaused {
			if err := simulator.Start(ctx); err != nil {
				return err
			}
		}

		fmt.Fprintf(rl.Stdout(), "run %s with %d services, type help for commands\n", simulator.RunID(), len(cfg.Services))
		return console.New(simulator, rl.Stdout()).Run(ctx, rl)
	},
}

func init() {
	consoleCmd.Flags().BoolVar(&consolePaused, "paused", false, "Do not start the tick loop; advance with step")
	consoleCmd.Flags().StringVar(&consoleLogFile, "log-file", "", "Path to export samples (JSONL)")
}
