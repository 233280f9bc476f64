package sim

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bulkhead-sim/internal/telemetry"
)

type collectWriter struct{ rows []telemetry.SampleRow }

func (c *collectWriter) Write(r telemetry.SampleRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func sampleLog(t *testing.T) ([]telemetry.SampleRow, []byte) {
	t.Helper()
	rows := []telemetry.SampleRow{
		{RunID: "r1", ServiceID: "payments", Tick: 1, Occupancy: 4, Timestamp: time.Unix(0, 0).UTC()},
		{RunID: "r1", ServiceID: "inventory", Tick: 1, Occupancy: 8, Timestamp: time.Unix(0, 0).UTC()},
		{RunID: "r1", ServiceID: "payments", Tick: 2, Occupancy: 6, Timestamp: time.Unix(1, 0).UTC()},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return rows, buf.Bytes()
}

func TestReplayLog(t *testing.T) {
	rows, data := sampleLog(t)
	cw := &collectWriter{}
	if err := ReplayLog(context.Background(), bytes.NewReader(data), cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].ServiceID != r.ServiceID || cw.rows[i].Tick != r.Tick {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogBatchesByTimestamp(t *testing.T) {
	_, data := sampleLog(t)
	mw := &MockWriter{}
	if err := ReplayLog(context.Background(), bytes.NewReader(data), mw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if mw.Batches != 2 || len(mw.Rows) != 3 {
		t.Fatalf("expected 2 batches of 3 rows, got %d batches %d rows", mw.Batches, len(mw.Rows))
	}
}

func TestReplayLogHonoursCancel(t *testing.T) {
	_, data := sampleLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// one second gap at speed 1 would block without cancellation
	err := ReplayLog(ctx, bytes.NewReader(data), &collectWriter{}, 1)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReplayLogFile(t *testing.T) {
	rows, data := sampleLog(t)
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cw := &collectWriter{}
	if err := ReplayLogFile(context.Background(), path, cw, 100); err != nil {
		t.Fatalf("ReplayLogFile: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	if err := ReplayLogFile(context.Background(), filepath.Join(t.TempDir(), "missing"), cw, 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
