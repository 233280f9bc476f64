package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bulkhead-sim/internal/telemetry"
)

const (
	// DefaultSampleChannel is the pub/sub channel every sample is published on.
	DefaultSampleChannel = "bulkhead:samples"
	redisWriteTimeout    = 2 * time.Second
)

// LatestKey is the hash holding the newest sample per service for a run.
func LatestKey(runID string) string {
	return fmt.Sprintf("bulkhead:%s:latest", runID)
}

// RedisWriter publishes samples and keeps the latest sample of each service
// in a hash, so other processes can follow a run without the admin server.
type RedisWriter struct {
	rdb     redis.UniversalClient
	channel string
}

// NewRedisWriter connects to addr. An empty channel uses DefaultSampleChannel.
func NewRedisWriter(ctx context.Context, addr, channel string) (*RedisWriter, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisWriterFromClient(rdb, channel), nil
}

// NewRedisWriterFromClient wraps an existing client.
func NewRedisWriterFromClient(rdb redis.UniversalClient, channel string) *RedisWriter {
	if channel == "" {
		channel = DefaultSampleChannel
	}
	return &RedisWriter{rdb: rdb, channel: channel}
}

// Write publishes a single sample.
func (w *RedisWriter) Write(row telemetry.SampleRow) error {
	return w.WriteBatch([]telemetry.SampleRow{row})
}

// WriteBatch publishes one tick's samples in a single pipeline.
func (w *RedisWriter) WriteBatch(rows []telemetry.SampleRow) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	pipe := w.rdb.Pipeline()
	for _, r := range rows {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, w.channel, payload)
		pipe.HSet(ctx, LatestKey(r.RunID), r.ServiceID, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (w *RedisWriter) Close() error {
	return w.rdb.Close()
}
