package sim

import (
	"bufio"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"bulkhead-sim/internal/telemetry"
)

// FileWriter writes samples to a JSONL file that ReplayLog can read back.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *jsoniter.Encoder
}

// NewFileWriter creates (or truncates) path and returns a FileWriter for it.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &FileWriter{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write logs a single sample.
func (f *FileWriter) Write(row telemetry.SampleRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(row); err != nil {
		return err
	}
	return f.buf.Flush()
}

// WriteBatch logs all samples of one tick and flushes once.
func (f *FileWriter) WriteBatch(rows []telemetry.SampleRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		if err := f.enc.Encode(r); err != nil {
			return err
		}
	}
	return f.buf.Flush()
}

// Close flushes pending output and closes the file.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.buf.Flush()
	if e := f.file.Close(); e != nil && err == nil {
		err = e
	}
	f.file = nil
	return err
}
