// Package console implements a line-oriented control surface for a running
// simulator.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"bulkhead-sim/internal/sim"
)

// Target is the simulator surface the console drives.
type Target interface {
	Snapshot() sim.Snapshot
	SetLatency(id string, latency float64) error
	Step(ctx context.Context) error
	ToggleChaos() bool
	Events() *sim.EventLog
}

// LineReader yields input lines. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

const helpText = `commands:
  show                    print every service slot
  set <id> <latency>      change a service's latency
  step [n]                apply n ticks now (default 1)
  chaos                   toggle chaos mode
  events                  print events since the last call
  help                    this text
  quit                    leave the console`

// Console executes commands against a Target.
type Console struct {
	target Target
	out    io.Writer
	after  uint64
}

// New returns a console writing its output to out.
func New(target Target, out io.Writer) *Console {
	return &Console{target: target, out: out}
}

// Completer offers the command names for tab completion.
func Completer(ids []string) *readline.PrefixCompleter {
	svc := make([]readline.PrefixCompleterInterface, len(ids))
	for i, id := range ids {
		svc[i] = readline.PcItem(id)
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("show"),
		readline.PcItem("set", svc...),
		readline.PcItem("step"),
		readline.PcItem("chaos"),
		readline.PcItem("events"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Run reads commands until quit, EOF, an interrupt on an empty line, or ctx is done.
func (c *Console) Run(ctx context.Context, lr LineReader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := lr.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if quit := c.Execute(ctx, line); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	switch strings.ToLower(parts[0]) {
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "quit", "exit":
		return true
	case "show":
		c.show()
	case "set":
		if len(parts) < 3 {
			fmt.Fprintln(c.out, "usage: set <id> <latency>")
			return false
		}
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			fmt.Fprintln(c.out, "invalid latency")
			return false
		}
		if err := c.target.SetLatency(parts[1], v); err != nil {
			fmt.Fprintf(c.out, "rejected: %v\n", err)
			return false
		}
		fmt.Fprintf(c.out, "%s latency %.1f\n", parts[1], v)
	case "step":
		n := 1
		if len(parts) > 1 {
			v, err := strconv.Atoi(parts[1])
			if err != nil || v < 1 {
				fmt.Fprintln(c.out, "usage: step [n], n >= 1")
				return false
			}
			n = v
		}
		for i := 0; i < n; i++ {
			if err := c.target.Step(ctx); err != nil {
				fmt.Fprintf(c.out, "step: %v\n", err)
				return false
			}
		}
		c.show()
	case "chaos":
		fmt.Fprintf(c.out, "chaos %t\n", c.target.ToggleChaos())
	case "events":
		c.events()
	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", parts[0])
	}
	return false
}

func (c *Console) show() {
	snap := c.target.Snapshot()
	fmt.Fprintf(c.out, "tick %d  state %s  chaos %t\n", snap.Tick, snap.State, snap.Chaos)
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLATENCY\tOCCUPANCY\tSTATUS")
	for _, s := range snap.Services {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f%%\t%s\n", s.ID, s.Latency, s.Occupancy, s.Status.Label())
	}
	tw.Flush()
}

func (c *Console) events() {
	evs, latest := c.target.Events().Since(c.after)
	c.after = latest
	if len(evs) == 0 {
		fmt.Fprintln(c.out, "no new events")
		return
	}
	for _, ev := range evs {
		ts := time.UnixMilli(ev.AtUnixMs).UTC().Format(time.TimeOnly)
		fmt.Fprintf(c.out, "#%d %s tick=%d %-16s %s\n", ev.Seq, ts, ev.Tick, ev.Type, ev.Message)
	}
}
