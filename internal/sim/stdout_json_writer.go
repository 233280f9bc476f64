package sim

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"bulkhead-sim/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONStdoutWriter prints samples as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a sample in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.SampleRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteBatch outputs multiple samples in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.SampleRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
