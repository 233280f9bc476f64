package sim

import (
	"errors"
	"io"

	"bulkhead-sim/internal/telemetry"
)

// MultiWriter fans samples out to several writers. Every writer sees every
// sample even when an earlier one fails; the errors are joined.
type MultiWriter struct {
	writers []SampleWriter
}

// NewMultiWriter creates a MultiWriter. nil entries are skipped.
func NewMultiWriter(writers ...SampleWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Write forwards a sample to all writers.
func (m *MultiWriter) Write(row telemetry.SampleRow) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch forwards a tick's samples, using batch mode where supported.
func (m *MultiWriter) WriteBatch(rows []telemetry.SampleRow) error {
	var errs []error
	for _, w := range m.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that implements io.Closer.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
