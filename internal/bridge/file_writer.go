package bridge

import (
	"encoding/json"
	"os"

	"waterops-bridge/internal/telemetry"
)

// FileWriter writes cycle and run state data to JSONL files.
type FileWriter struct {
	pointsFile *os.File
	stateFile  *os.File
	pointsEnc  *json.Encoder
	stateEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. statePath may be empty to skip
// the state log.
func NewFileWriter(pointsPath, statePath string) (*FileWriter, error) {
	pf, err := os.Create(pointsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{pointsFile: pf, pointsEnc: json.NewEncoder(pf)}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			pf.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single cycle row.
func (f *FileWriter) Write(row telemetry.CycleRow) error {
	return f.pointsEnc.Encode(row)
}

// WriteBatch logs multiple cycle rows.
func (f *FileWriter) WriteBatch(rows []telemetry.CycleRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs a run state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.RunStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.pointsFile != nil {
		if e := f.pointsFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
