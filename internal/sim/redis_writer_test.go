package sim

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/telemetry"
)

func TestRedisWriterPublishesAndStoresLatest(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w, err := NewRedisWriter(ctx, mr.Addr(), "")
	if err != nil {
		t.Fatalf("NewRedisWriter: %v", err)
	}
	defer w.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()
	ps := sub.Subscribe(ctx, DefaultSampleChannel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := NewSimulator(config.Default(), w, WithInflow(ConstantInflow(0)), WithRunID("redis-run"))
	if err := s.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}

	msg, err := ps.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var row telemetry.SampleRow
	if err := json.Unmarshal([]byte(msg.Payload), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.RunID != "redis-run" || row.ServiceID != "payments" {
		t.Fatalf("unexpected first sample: %+v", row)
	}

	latest := mr.HGet(LatestKey("redis-run"), "inventory")
	if err := json.Unmarshal([]byte(latest), &row); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if row.Occupancy != 8 || row.Tick != 1 {
		t.Fatalf("unexpected latest inventory sample: %+v", row)
	}
}

func TestNewRedisWriterUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisWriter(ctx, addr, ""); err == nil {
		t.Fatalf("expected ping error")
	}
}
