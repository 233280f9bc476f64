package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bulkhead-sim/internal/telemetry"
)

type fakeProgram struct {
	mu   sync.Mutex
	msgs []tea.Msg
	gate chan struct{}
}

func (f *fakeProgram) Send(msg tea.Msg) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
}

func (f *fakeProgram) received() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tea.Msg(nil), f.msgs...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWriterSendsBatches(t *testing.T) {
	fp := &fakeProgram{}
	w := NewWriter(fp)
	defer w.Close()

	rows := []telemetry.SampleRow{{ServiceID: "payments", Tick: 1}, {ServiceID: "inventory", Tick: 1}}
	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	waitFor(t, func() bool { return len(fp.received()) == 1 })
	msg, ok := fp.received()[0].(samplesMsg)
	if !ok || len(msg.rows) != 2 {
		t.Fatalf("unexpected message: %#v", fp.received()[0])
	}
	rows[0].ServiceID = "mutated"
	if msg.rows[0].ServiceID != "payments" {
		t.Fatalf("writer must copy the batch")
	}
}

func TestWriterNeverBlocks(t *testing.T) {
	fp := &fakeProgram{gate: make(chan struct{})}
	w := NewWriter(fp)
	defer w.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = w.Write(telemetry.SampleRow{Tick: uint64(i + 1)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("writer blocked on a stalled program")
	}
	close(fp.gate)
	waitFor(t, func() bool {
		msgs := fp.received()
		if len(msgs) == 0 {
			return false
		}
		last := msgs[len(msgs)-1].(samplesMsg)
		return last.rows[0].Tick == 100
	})
	if n := len(fp.received()); n > 3 {
		t.Fatalf("expected stale batches to be dropped, got %d messages", n)
	}
}

func TestWriterCloseStopsForwarding(t *testing.T) {
	fp := &fakeProgram{}
	w := NewWriter(fp)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = w.Close()
	if err := w.Write(telemetry.SampleRow{}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
}
