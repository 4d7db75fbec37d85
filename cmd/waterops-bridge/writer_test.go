package main

import (
	"path/filepath"
	"testing"

	"waterops-bridge/internal/bridge"
)

// Tests run with stdout piped, so the non-TUI, non-color paths apply.

func TestNewWriterPrintOnly(t *testing.T) {
	w, cleanup, err := newWriter(true, false, "", "")
	if err != nil {
		t.Fatalf("newWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*bridge.JSONStdoutWriter); !ok {
		t.Fatalf("expected *bridge.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWriterGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriter(false, false, "", "")
	if err != nil {
		t.Fatalf("newWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*bridge.JSONStdoutWriter); !ok {
		t.Fatalf("expected *bridge.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWriterLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	w, cleanup, err := newWriter(true, false, path, "")
	if err != nil {
		t.Fatalf("newWriter returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*bridge.MultiWriter); !ok {
		t.Fatalf("expected *bridge.MultiWriter, got %T", w)
	}
}

func TestNewWriterHistoryDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	w, cleanup, err := newWriter(true, false, "", path)
	if err != nil {
		t.Fatalf("newWriter returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*bridge.MultiWriter); !ok {
		t.Fatalf("expected *bridge.MultiWriter, got %T", w)
	}
}

func TestNewWriterTUIRequiresTerminal(t *testing.T) {
	w, cleanup, err := newWriter(true, true, "", "")
	if err != nil {
		t.Fatalf("newWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*bridge.JSONStdoutWriter); !ok {
		t.Fatalf("expected fallback to *bridge.JSONStdoutWriter, got %T", w)
	}
}
