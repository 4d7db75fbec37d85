package bridge

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"waterops-bridge/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	row := telemetry.CycleRow{
		PlantID:    "p1",
		Quantity:   telemetry.QuantityJunctionPressure,
		AssetIndex: 1,
		Value:      10.5,
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	if err := w.Write(row); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(logMsg); !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(pointMsg); !ok {
		t.Fatalf("expected pointMsg, got %T", p.msgs[1])
	}
	if err := w.WriteState(telemetry.RunStateRow{State: "running"}); err != nil {
		t.Fatalf("state: %v", err)
	}
	if _, ok := p.msgs[2].(stateMsg); !ok {
		t.Fatalf("expected stateMsg, got %T", p.msgs[2])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[3].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[3])
	}
}

func TestTUIWriterClose(t *testing.T) {
	p := &fakeProgram{}
	done := make(chan struct{})
	close(done)
	w := &TUIWriter{program: p, done: done}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(p.msgs) != 1 {
		t.Fatalf("expected quit message, got %d messages", len(p.msgs))
	}
	if _, ok := p.msgs[0].(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg, got %T", p.msgs[0])
	}
	if w.sendSignal.Load() {
		t.Fatalf("close must suppress the exit signal")
	}
}

func TestTUIModelWrapToggle(t *testing.T) {
	m := newTUIModel(nil)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestTUIModelScrollToggle(t *testing.T) {
	m := newTUIModel(nil)
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	expected := len(m.logs) - m.vp.Height
	if m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
}

func TestTUIModelSummaryToggle(t *testing.T) {
	ov := &telemetry.NetworkOverview{Pipes: 2}
	m := newTUIModel(ov)
	rows := []telemetry.CycleRow{
		{Quantity: telemetry.QuantityJunctionPressure, AssetIndex: 1, Value: 10},
		{Quantity: telemetry.QuantityJunctionPressure, AssetIndex: 2, Value: 30},
		{Quantity: telemetry.QuantityPipeStatus, AssetIndex: 1, Value: 1},
		{Quantity: telemetry.QuantityPipeStatus, AssetIndex: 3, Value: 0},
	}
	for _, r := range rows {
		mi, _ := m.Update(pointMsg{CycleRow: r})
		m = mi.(tuiModel)
	}
	if strings.Contains(m.renderBottom(), "SUMMARY") {
		t.Fatalf("summary shown before toggle")
	}
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m = mi.(tuiModel)
	bottom := m.renderBottom()
	if !strings.Contains(bottom, "SUMMARY") {
		t.Fatalf("summary missing after toggle: %q", bottom)
	}
	if !strings.Contains(bottom, "avg_press=20.00") {
		t.Fatalf("expected average pressure 20.00: %q", bottom)
	}
	if !strings.Contains(bottom, "pipes_open=1/2") {
		t.Fatalf("expected one open pipe of two: %q", bottom)
	}
}

func TestTUIModelHelpToggle(t *testing.T) {
	m := newTUIModel(nil)
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	m = mi.(tuiModel)
	if !m.help {
		t.Fatalf("help not toggled")
	}
	if !strings.Contains(m.View(), "Key Bindings:") {
		t.Fatalf("help view missing bindings")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	m = mi.(tuiModel)
	if m.help {
		t.Fatalf("help should close on second toggle")
	}
}
