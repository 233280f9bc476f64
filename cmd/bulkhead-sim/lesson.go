package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bulkhead-sim/internal/lesson"
	"bulkhead-sim/internal/sim"
	"bulkhead-sim/internal/tui"
)

var (
	lessonTab     string
	lessonLogFile string
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Open the interactive bulkhead lesson",
	Long:  "lesson walks through the ship analogy, the shared and isolated pool demos, the live simulation, real-world examples and a quiz.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, ok := lesson.ParseTab(lessonTab)
		if !ok {
			return fmt.Errorf("unknown tab %q", lessonTab)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var sinks []sim.SampleWriter
		if lessonLogFile != "" {
			fw, err := sim.NewFileWriter(lessonLogFile)
			if err != nil {
				return err
			}
			defer fw.Close()
			sinks = append(sinks, fw)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()
		return tui.Run(ctx, cfg, tui.Options{StartTab: tab, Sinks: sinks})
	},
}

func init() {
	lessonCmd.Flags().StringVar(&lessonTab, "tab", lesson.TabConcept.ID(), "Tab to open first: concept, problem, solution, simulation, real_world, quiz")
	lessonCmd.Flags().StringVar(&lessonLogFile, "log-file", "", "Path to export simulation samples (JSONL)")
}
