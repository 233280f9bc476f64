package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"bulkhead-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
	err   error
	calls int
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterSamples(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.SampleRow{
		{RunID: "r1", ServiceID: "payments", Name: "Payments", Tick: 1, Latency: 1, Occupancy: 4.5, Status: "healthy", Timestamp: ts},
		{RunID: "r1", ServiceID: "inventory", Name: "Inventory", Tick: 1, Latency: 10, Occupancy: 95, Status: "critical", Timestamp: ts},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: "bulkhead_samples"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 8 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[1].ColumnName != "service_id" || schema[1].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("service_id column = %+v", schema[1])
	}
	if schema[7].SemanticType != gpb.SemanticType_TIMESTAMP {
		t.Fatalf("ts column = %+v", schema[7])
	}

	got := m.table.GetRows().Rows
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if v := got[1].Values[1].GetStringValue(); v != "inventory" {
		t.Fatalf("service_id = %s, want inventory", v)
	}
	if v := got[1].Values[5].GetF64Value(); v != 95 {
		t.Fatalf("occupancy = %v, want 95", v)
	}
	if v := got[1].Values[6].GetStringValue(); v != "critical" {
		t.Fatalf("status = %s, want critical", v)
	}
}

func TestGreptimeWriterEmptyAndError(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m}
	if err := w.WriteBatch(nil); err != nil || m.calls != 0 {
		t.Fatalf("empty batch should be a no-op: err=%v calls=%d", err, m.calls)
	}
	m.err = errors.New("unavailable")
	if err := w.Write(telemetry.SampleRow{ServiceID: "payments", Timestamp: time.Now()}); err == nil {
		t.Fatalf("expected error")
	}
	if m.table.GetRows().Schema[0].ColumnName != "run_id" {
		t.Fatalf("default table not built")
	}
}
