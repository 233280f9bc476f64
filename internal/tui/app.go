// Package tui renders the interactive bulkhead lesson with bubbletea.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/lesson"
	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/sim"
)

// Options configures the lesson app.
type Options struct {
	// StartTab is the tab shown first.
	StartTab lesson.Tab
	// Sinks receive the simulation samples next to the UI.
	Sinks []sim.SampleWriter
	// SimOptions are applied to every simulator the app builds.
	SimOptions []sim.Option
}

// Run starts the lesson and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg *config.SimulationConfig, opts Options) error {
	if cfg == nil {
		cfg = config.Default()
	}
	// w is assigned before the program runs; the factory is only called from Update.
	var w *Writer
	factory := func() *sim.Simulator {
		sinks := append([]sim.SampleWriter{w}, opts.Sinks...)
		simOpts := append([]sim.Option{sim.WithLogger(logging.Discard())}, opts.SimOptions...)
		return sim.NewSimulator(cfg, sim.NewMultiWriter(sinks...), simOpts...)
	}
	m := newModel(cfg, factory, opts.StartTab)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	w = NewWriter(p)
	defer w.Close()

	final, err := p.Run()
	if fm, ok := final.(model); ok {
		fm.leaveTab()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
