package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bulkhead-sim/internal/logging"
	"bulkhead-sim/internal/telemetry"
)

type transition struct {
	service string
	from    Status
	to      Status
}

// Start launches the tick loop in the background. The loop ends when ctx is
// done or Stop is called.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning
	s.publishLocked()
	go s.loop(loopCtx, s.done)
	s.events.Append(Event{
		Tick:    s.tick,
		Type:    EventStart,
		Message: fmt.Sprintf("simulator started with %d services", len(s.slots)),
		Fields:  map[string]any{"tick_interval": s.tickInterval.String()},
	})
	return nil
}

// Run starts the simulation loop and blocks until ctx is done or Stop is called.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	select {
	case <-ctx.Done():
	case <-done:
	}
	s.Stop()
	return nil
}

// Stop cancels the tick loop and waits for it to exit. Once Stop returns no
// further tick is applied. Stop is idempotent and the stopped state is final.
func (s *Simulator) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	tick := s.tick
	if prev != StateStopped {
		s.publishLocked()
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	// wait out a Step running on another goroutine
	s.tickMu.Lock()
	s.tickMu.Unlock()

	if prev != StateStopped {
		s.events.Append(Event{Tick: tick, Type: EventStop, Message: "simulator stopped"})
	}
}

// Step applies exactly one tick synchronously.
func (s *Simulator) Step(ctx context.Context) error {
	if s.tickOnce(ctx) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrStopped
}

func (s *Simulator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := s.loggerFor(ctx)
	log.Info("starting simulator", "run_id", s.runID, "tick_interval", s.tickInterval, "services", len(s.slots))
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tickOnce(ctx)
		case <-ctx.Done():
			s.mu.Lock()
			stopped := s.state == StateRunning
			if stopped {
				s.state = StateStopped
				s.publishLocked()
			}
			tick := s.tick
			s.mu.Unlock()
			if stopped {
				s.events.Append(Event{Tick: tick, Type: EventStop, Message: "simulator stopped"})
			}
			log.Info("stopping simulator", "run_id", s.runID)
			return
		}
	}
}

// tickOnce advances every slot by one tick, publishes the new snapshot and
// hands the samples to the writer. It reports whether a tick was applied.
func (s *Simulator) tickOnce(ctx context.Context) bool {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return false
	}
	var spiked string
	if s.chaos {
		spiked, _ = s.injectChaosLocked()
	}
	s.tick++
	tick := s.tick
	now := s.now().UTC()
	rows := make([]telemetry.SampleRow, 0, len(s.slots))
	var transitions []transition
	for _, sl := range s.slots {
		outflow := DrainRate(sl.latency, s.drainConstant)
		sl.occupancy = NextOccupancy(sl.occupancy, s.inflow.Draw(sl.id), outflow)
		status := Classify(sl.occupancy)
		if status != sl.status {
			transitions = append(transitions, transition{service: sl.id, from: sl.status, to: status})
			sl.status = status
		}
		s.metrics.observeSlot(sl.id, sl.latency, sl.occupancy)
		rows = append(rows, telemetry.SampleRow{
			RunID:     s.runID,
			ServiceID: sl.id,
			Name:      sl.name,
			Tick:      tick,
			Latency:   sl.latency,
			Occupancy: sl.occupancy,
			Status:    string(status),
			Timestamp: now,
		})
	}
	s.publishLocked()
	snap := s.Snapshot()
	s.mu.Unlock()

	log := s.loggerFor(ctx)
	s.metrics.observeTick()
	if spiked != "" {
		log.Info("chaos latency spike", "service", spiked, "tick", tick)
		s.events.Append(Event{
			Tick:    tick,
			Type:    EventChaosSpike,
			Service: spiked,
			Message: fmt.Sprintf("chaos spiked %s to latency %.1f", spiked, s.bounds.Max),
		})
	}
	for _, tr := range transitions {
		s.metrics.observeTransition(tr.service, tr.to)
		log.Info("status changed", "service", tr.service, "from", tr.from, "to", tr.to, "tick", tick)
		s.events.Append(Event{
			Tick:    tick,
			Type:    EventStatusChange,
			Service: tr.service,
			Message: fmt.Sprintf("%s %s -> %s", tr.service, tr.from, tr.to),
			Fields:  map[string]any{"from": string(tr.from), "to": string(tr.to)},
		})
	}

	s.write(log, rows)

	for _, h := range s.hooks {
		h(ctx, snap)
	}
	return true
}

func (s *Simulator) write(log *slog.Logger, rows []telemetry.SampleRow) {
	if s.writer == nil || len(rows) == 0 {
		return
	}
	// Batch support if writer implements WriteBatch
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(rows); err != nil {
			log.Error("batch write failed", "err", err)
		}
		return
	}
	for _, row := range rows {
		if err := s.writer.Write(row); err != nil {
			log.Error("write failed", "service", row.ServiceID, "err", err)
		}
	}
}

func (s *Simulator) loggerFor(ctx context.Context) *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return logging.FromContext(ctx)
}
