package bridge

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"waterops-bridge/internal/telemetry"
)

// JSONStdoutWriter prints cycle points and run state as JSON to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a cycle row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.CycleRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple cycle rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.CycleRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteState outputs a run state row in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.RunStateRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}
