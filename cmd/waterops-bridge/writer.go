package main

import (
	"os"

	"golang.org/x/term"

	"waterops-bridge/internal/bridge"
)

// newWriter assembles the history writer stack from flags and env
// vars. The returned cleanup closes every resource-backed writer and
// must run after the bridge has stopped.
func newWriter(printOnly, tui bool, logFile, historyDB string) (bridge.CycleWriter, func(), error) {
	base, err := baseWriter(printOnly, tui)
	if err != nil {
		return nil, nil, err
	}

	cws := []bridge.CycleWriter{base}
	if logFile != "" {
		fw, err := bridge.NewFileWriter(logFile, logFile+".state")
		if err != nil {
			return nil, nil, err
		}
		cws = append(cws, fw)
	}
	if historyDB != "" {
		dw, err := bridge.NewSQLiteWriter(historyDB)
		if err != nil {
			return nil, nil, err
		}
		cws = append(cws, dw)
	}

	sws := []bridge.StateWriter{}
	closers := []func() error{}
	for _, w := range cws {
		if sw, ok := w.(bridge.StateWriter); ok {
			sws = append(sws, sw)
		}
		if c, ok := w.(interface{ Close() error }); ok {
			closers = append(closers, c.Close)
		}
	}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if len(cws) == 1 {
		return base, cleanup, nil
	}
	return bridge.NewMultiWriter(cws, sws), cleanup, nil
}

// baseWriter chooses the primary sink: TUI when requested on a
// terminal, GreptimeDB when an endpoint is configured, stdout
// otherwise (colorized on a terminal, JSON lines when piped).
func baseWriter(printOnly, tui bool) (bridge.CycleWriter, error) {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if tui && interactive {
		return bridge.NewTUIWriter(nil), nil
	}
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if interactive {
			return bridge.NewColorStdoutWriter(nil), nil
		}
		return bridge.NewJSONStdoutWriter(), nil
	}
	return bridge.NewGreptimeDBWriter(os.Getenv("GREPTIMEDB_ENDPOINT"), "public")
}
