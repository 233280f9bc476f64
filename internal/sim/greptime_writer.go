package sim

import (
	"context"
	"log/slog"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"bulkhead-sim/internal/telemetry"
)

const greptimeWriteTimeout = 5 * time.Second

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes samples to GreptimeDB via the ingester client.
// The table is created on first write.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
	log    *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint (host, default gRPC port 4001)
// and writes into database.table. An empty table uses the default sample table.
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(endpoint).WithPort(4001).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = telemetry.SampleTableName
	}
	return &GreptimeDBWriter{client: client, table: tableName, log: slog.Default()}, nil
}

// Write inserts a single sample.
func (w *GreptimeDBWriter) Write(row telemetry.SampleRow) error {
	return w.WriteBatch([]telemetry.SampleRow{row})
}

// WriteBatch inserts one tick's samples in a single request.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.SampleRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.sampleTable(rows)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger().Error("greptimedb write failed", "table", w.table, "rows", len(rows), "err", err)
		return err
	}
	w.logger().Debug("greptimedb write", "table", w.table, "rows", len(rows))
	return nil
}

func (w *GreptimeDBWriter) sampleTable(rows []telemetry.SampleRow) (*table.Table, error) {
	name := w.table
	if name == "" {
		name = telemetry.SampleTableName
	}
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		name string
		tag  bool
		typ  types.ColumnType
	}{
		{"run_id", true, types.STRING},
		{"service_id", true, types.STRING},
		{"name", false, types.STRING},
		{"tick", false, types.UINT64},
		{"latency", false, types.FLOAT64},
		{"occupancy", false, types.FLOAT64},
		{"status", false, types.STRING},
	} {
		if col.tag {
			err = tbl.AddTagColumn(col.name, col.typ)
		} else {
			err = tbl.AddFieldColumn(col.name, col.typ)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.RunID, r.ServiceID, r.Name, r.Tick, r.Latency, r.Occupancy, r.Status, r.Timestamp); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log != nil {
		return w.log
	}
	return slog.Default()
}
