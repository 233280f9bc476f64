package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/sim"
)

// newWriters sets up the sample writers based on flags and env vars.
// It returns the writer and a cleanup function to close any resources.
func newWriters(ctx context.Context, cfg *config.SimulationConfig, printOnly bool, logFile string) (sim.SampleWriter, func(), error) {
	base, err := baseWriter(cfg, printOnly)
	if err != nil {
		return nil, nil, err
	}
	writers := []sim.SampleWriter{base}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" && !printOnly {
		rw, err := sim.NewRedisWriter(ctx, addr, os.Getenv("REDIS_CHANNEL"))
		if err != nil {
			closeAll(writers)
			return nil, nil, err
		}
		writers = append(writers, rw)
	}
	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile)
		if err != nil {
			closeAll(writers)
			return nil, nil, err
		}
		writers = append(writers, fw)
	}

	cleanup := func() { closeAll(writers) }
	if len(writers) == 1 {
		return base, cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}

// baseWriter chooses the underlying writer based on printOnly flag and env vars.
func baseWriter(cfg *config.SimulationConfig, printOnly bool) (sim.SampleWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return stdoutWriter(cfg), nil
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(os.Getenv("GREPTIMEDB_ENDPOINT"), database, os.Getenv("GREPTIMEDB_TABLE"))
}

func stdoutWriter(cfg *config.SimulationConfig) sim.SampleWriter {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return sim.NewColorStdoutWriter(cfg)
	}
	return sim.NewJSONStdoutWriter()
}

func closeAll(writers []sim.SampleWriter) {
	for _, w := range writers {
		if c, ok := w.(io.Closer); ok {
			c.Close()
		}
	}
}
