package console

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/sim"
)

type scriptedReader struct {
	lines []string
	errAt map[int]error
	pos   int
}

func (s *scriptedReader) Readline() (string, error) {
	defer func() { s.pos++ }()
	if err, ok := s.errAt[s.pos]; ok {
		return "", err
	}
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	return s.lines[s.pos], nil
}

func newTestConsole() (*Console, *sim.Simulator, *bytes.Buffer) {
	s := sim.NewSimulator(config.Default(), nil, sim.WithInflow(sim.ConstantInflow(0)))
	out := &bytes.Buffer{}
	return New(s, out), s, out
}

func TestSetAndStep(t *testing.T) {
	c, s, out := newTestConsole()
	ctx := context.Background()

	assert.False(t, c.Execute(ctx, "set inventory 2"))
	assert.Contains(t, out.String(), "inventory latency 2.0")

	out.Reset()
	c.Execute(ctx, "step 2")
	assert.Equal(t, uint64(2), s.Snapshot().Tick)
	assert.Contains(t, out.String(), "tick 2")
	slot, _ := s.Snapshot().Service("inventory")
	assert.InDelta(t, 8.0, slot.Occupancy, 1e-9)
}

func TestRejectedCommands(t *testing.T) {
	c, s, out := newTestConsole()
	ctx := context.Background()

	c.Execute(ctx, "set search 2")
	assert.Contains(t, out.String(), "rejected: unknown service")
	out.Reset()
	c.Execute(ctx, "set payments 0")
	assert.Contains(t, out.String(), "rejected: invalid latency")
	out.Reset()
	c.Execute(ctx, "set payments")
	assert.Contains(t, out.String(), "usage")
	out.Reset()
	c.Execute(ctx, "step -1")
	assert.Contains(t, out.String(), "usage")
	out.Reset()
	c.Execute(ctx, "frobnicate")
	assert.Contains(t, out.String(), "unknown command")
	assert.Zero(t, s.Snapshot().Tick)
}

func TestEventsCursor(t *testing.T) {
	c, _, out := newTestConsole()
	ctx := context.Background()

	c.Execute(ctx, "chaos")
	assert.Contains(t, out.String(), "chaos true")
	out.Reset()
	c.Execute(ctx, "events")
	assert.Contains(t, out.String(), string(sim.EventChaosToggle))
	out.Reset()
	c.Execute(ctx, "events")
	assert.Contains(t, out.String(), "no new events")
}

func TestRunStopsOnQuitAndEOF(t *testing.T) {
	c, s, out := newTestConsole()
	r := &scriptedReader{lines: []string{"", "step", "quit", "step"}}
	require.NoError(t, c.Run(context.Background(), r))
	assert.Equal(t, uint64(1), s.Snapshot().Tick)
	assert.Contains(t, out.String(), "payments")

	r = &scriptedReader{lines: []string{"help"}}
	require.NoError(t, c.Run(context.Background(), r))
	assert.Contains(t, out.String(), "commands:")
}

func TestRunInterrupt(t *testing.T) {
	c, s, _ := newTestConsole()
	r := &scriptedReader{lines: []string{"step", "", "step"}, errAt: map[int]error{1: readline.ErrInterrupt}}
	require.NoError(t, c.Run(context.Background(), r))
	assert.Equal(t, uint64(1), s.Snapshot().Tick)
}

func TestCompleter(t *testing.T) {
	pc := Completer([]string{"payments"})
	require.NotNil(t, pc)
	assert.Len(t, pc.Children, 7)
}
