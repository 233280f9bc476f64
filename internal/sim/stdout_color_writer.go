// ColorStdoutWriter prints human-friendly, colorized samples to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

const gaugeWidth = 20

// ColorStdoutWriter prints samples using ANSI colors.
type ColorStdoutWriter struct {
	cfg           *config.SimulationConfig
	out           io.Writer
	once          sync.Once
	mu            sync.Mutex
	serviceColors map[string]string
	colorIdx      int
}

var servicePalette = []string{colorBlue, colorMagenta, colorCyan, colorYellow, colorGreen, colorRed}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:           cfg,
		out:           os.Stdout,
		serviceColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) serviceColor(id string) string {
	if c, ok := w.serviceColors[id]; ok {
		return c
	}
	c := servicePalette[w.colorIdx%len(servicePalette)]
	w.serviceColors[id] = c
	w.colorIdx++
	return c
}

func statusColor(s string) string {
	switch Status(s) {
	case StatusCritical:
		return colorRed
	case StatusWarning:
		return colorYellow
	}
	return colorGreen
}

// gauge renders occupancy as a fixed-width bar.
func gauge(occupancy float64) string {
	n := int(clampOccupancy(occupancy) / MaxOccupancy * gaugeWidth)
	return strings.Repeat("#", n) + strings.Repeat(".", gaugeWidth-n)
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Tick Interval:\t%s\n", w.cfg.TickInterval)
	fmt.Fprintf(tw, "Inflow Max:\t%.1f\n", w.cfg.InflowMax)
	fmt.Fprintf(tw, "Drain Constant:\t%.1f\n", w.cfg.DrainConstant)
	fmt.Fprintf(tw, "Latency Range:\t%.1f - %.1f\n", w.cfg.Latency.Min, w.cfg.Latency.Max)
	fmt.Fprintf(tw, "Chaos Rate:\t%.2f\n", w.cfg.ChaosRate)
	tw.Flush()

	fmt.Fprintln(w.out, "\nServices:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tSeed\tLatency\n")
	for _, s := range w.cfg.Services {
		col := w.serviceColor(s.ID)
		fmt.Fprintf(tw, "%s%s%s\t%s\t%.0f%%\t%.1f\n", col, s.ID, colorReset, s.Name, s.SeedOccupancy, s.Latency)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single sample in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.SampleRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	sc := statusColor(row.Status)
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%stick=%d%s ", colorGray, row.Tick, colorReset)
	fmt.Fprintf(w.out, "%sservice=%-10s%s ", w.serviceColor(row.ServiceID), row.ServiceID, colorReset)
	fmt.Fprintf(w.out, "%s[%s]%s ", sc, gauge(row.Occupancy), colorReset)
	fmt.Fprintf(w.out, "%socc=%5.1f%%%s ", colorCyan, row.Occupancy, colorReset)
	fmt.Fprintf(w.out, "%slat=%.1f%s ", colorMagenta, row.Latency, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s", sc, Status(row.Status).Label(), colorReset)
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple samples.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.SampleRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}
