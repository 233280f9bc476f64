package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"bulkhead-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// samplesMsg carries one tick's samples into the model.
type samplesMsg struct{ rows []telemetry.SampleRow }

// Writer hands simulator samples to a running bubbletea program. Writes never
// block: when the UI falls behind, only the newest batch is kept.
type Writer struct {
	program teaProgram
	pending chan []telemetry.SampleRow
	done    chan struct{}
	once    sync.Once
}

// NewWriter creates a Writer forwarding into p.
func NewWriter(p teaProgram) *Writer {
	w := &Writer{
		program: p,
		pending: make(chan []telemetry.SampleRow, 1),
		done:    make(chan struct{}),
	}
	go w.pump()
	return w
}

func (w *Writer) pump() {
	for {
		select {
		case <-w.done:
			return
		case rows := <-w.pending:
			w.program.Send(samplesMsg{rows: rows})
		}
	}
}

// Write forwards a single sample.
func (w *Writer) Write(row telemetry.SampleRow) error {
	return w.WriteBatch([]telemetry.SampleRow{row})
}

// WriteBatch forwards a tick's samples, replacing any batch not yet delivered.
func (w *Writer) WriteBatch(rows []telemetry.SampleRow) error {
	batch := append([]telemetry.SampleRow(nil), rows...)
	for {
		select {
		case <-w.done:
			return nil
		case w.pending <- batch:
			return nil
		default:
		}
		select {
		case <-w.pending:
		default:
		}
	}
}

// Close stops forwarding. It does not stop the program.
func (w *Writer) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}
