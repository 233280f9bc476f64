package sim

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/telemetry"
)

func TestFileWriterRoundTripsThroughReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	s := NewSimulator(config.Default(), fw, WithInflow(ConstantInflow(0)), WithRunID("file-run"))
	for i := 0; i < 2; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := bytes.Count(data, []byte("\n")); n != 6 {
		t.Fatalf("expected 6 lines, got %d", n)
	}
	cw := &collectWriter{}
	if err := ReplayLog(context.Background(), bytes.NewReader(data), cw, 0); err != nil {
		t.Fatalf("replay: %v", err)
	}
	last := cw.rows[len(cw.rows)-1]
	if last.RunID != "file-run" || last.Tick != 2 || last.ServiceID != "reviews" {
		t.Fatalf("unexpected last row: %+v", last)
	}
}

func TestFileWriterBadPath(t *testing.T) {
	if _, err := NewFileWriter(filepath.Join(t.TempDir(), "missing", "x.jsonl")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	row := telemetry.SampleRow{RunID: "r", ServiceID: "payments", Occupancy: 12.5, Status: "healthy", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteBatch([]telemetry.SampleRow{row, row}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 || !bytes.Contains(lines[0], []byte(`"service_id":"payments"`)) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestColorStdoutWriter(t *testing.T) {
	cfg := config.Default()
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: cfg, out: buf, serviceColors: make(map[string]string)}
	row := telemetry.SampleRow{ServiceID: "payments", Tick: 3, Latency: 1, Occupancy: 95, Status: string(StatusCritical), Timestamp: time.Unix(0, 0)}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("Simulation Configuration:")) || !bytes.Contains(buf.Bytes(), []byte("Services:")) {
		t.Fatalf("overview not printed: %q", output)
	}
	if !bytes.Contains(buf.Bytes(), []byte(colorRed+"status=CRITICAL - REJECTING")) {
		t.Fatalf("expected red critical status: %q", output)
	}

	buf.Reset()
	if err := w.Write(row); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("Simulation Configuration:")) {
		t.Fatalf("overview printed more than once")
	}
}

func TestGauge(t *testing.T) {
	if g := gauge(50); g != "##########.........." {
		t.Fatalf("gauge(50) = %q", g)
	}
	if g := gauge(150); len(g) != gaugeWidth || g[gaugeWidth-1] != '#' {
		t.Fatalf("gauge(150) = %q", g)
	}
}
