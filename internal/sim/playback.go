package sim

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"bulkhead-sim/internal/telemetry"
)

// ReplayLog replays samples from r to writer. A speed >0 scales the original
// inter-tick gaps (2 plays twice as fast). If speed <= 0, no delay is inserted.
// Samples sharing a timestamp are handed over as one batch.
func ReplayLog(ctx context.Context, r io.Reader, writer SampleWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var (
		prev  time.Time
		batch []telemetry.SampleRow
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		defer func() { batch = nil }()
		if bw, ok := writer.(batchWriter); ok {
			return bw.WriteBatch(batch)
		}
		for _, row := range batch {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	for {
		var row telemetry.SampleRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return flush()
			}
			return err
		}
		if !prev.IsZero() && !row.Timestamp.Equal(prev) {
			if err := flush(); err != nil {
				return err
			}
			if speed > 0 {
				if err := sleepCtx(ctx, time.Duration(float64(row.Timestamp.Sub(prev))/speed)); err != nil {
					return err
				}
			}
		}
		batch = append(batch, row)
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its samples.
func ReplayLogFile(ctx context.Context, path string, writer SampleWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
