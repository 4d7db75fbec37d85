package bridge

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"waterops-bridge/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// pointMsg carries a cycle row for the latest-values aggregation.
type pointMsg struct{ telemetry.CycleRow }

// stateMsg carries a run state update.
type stateMsg struct{ telemetry.RunStateRow }

// adminMsg reports admin API status.
type adminMsg struct{ active bool }

// overviewMsg carries the loaded network overview.
type overviewMsg struct{ telemetry.NetworkOverview }

const maxLogLines = 1000

// TUIWriter renders cycle output using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
// The overview may be nil if the network is not loaded yet.
func NewTUIWriter(overview *telemetry.NetworkOverview) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(overview)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements CycleWriter.
func (w *TUIWriter) Write(row telemetry.CycleRow) error {
	qColor, ok := quantityColors[row.Quantity]
	if !ok {
		qColor = colorWhite()
	}
	line := fmt.Sprintf("%s[%s]%s %splant=%s%s %scycle=%d%s %s%s[%d]=%.3f%s %ssim_t=%.0fs%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.PlantID, colorReset,
		colorWhite(), row.Cycle, colorReset,
		qColor, row.Quantity, row.AssetIndex, row.Value, colorReset,
		colorGray, row.SimTimeS, colorReset,
	)
	w.program.Send(logMsg{line: line})
	w.program.Send(pointMsg{CycleRow: row})
	return nil
}

// WriteBatch outputs multiple cycle rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.CycleRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.RunStateRow) error {
	w.program.Send(stateMsg{RunStateRow: row})
	return nil
}

// SetAdminStatus updates the admin API indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetOverview updates the header once the network is loaded.
func (w *TUIWriter) SetOverview(ov telemetry.NetworkOverview) {
	w.program.Send(overviewMsg{NetworkOverview: ov})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	overview     *telemetry.NetworkOverview
	table        table.Model
	vp           viewport.Model
	logs         []string
	values       map[string]map[int]float64
	state        telemetry.RunStateRow
	admin        bool
	wrap         bool
	autoscroll   bool
	summary      bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func overviewRows(ov *telemetry.NetworkOverview) []table.Row {
	return []table.Row{
		{"Model", ov.Model, "Hydraulic Step", ov.HydStep.String()},
		{"Junctions", fmt.Sprintf("%d", ov.Junctions), "Reservoirs", fmt.Sprintf("%d", ov.Reservoirs)},
		{"Tanks", fmt.Sprintf("%d", ov.Tanks), "Pipes", fmt.Sprintf("%d", ov.Pipes)},
		{"Pumps", fmt.Sprintf("%d", ov.Pumps), "Valves", fmt.Sprintf("%d", ov.Valves)},
	}
}

func newTUIModel(overview *telemetry.NetworkOverview) tuiModel {
	ov := overview
	if ov == nil {
		ov = &telemetry.NetworkOverview{}
	}
	cols := []table.Column{
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 10},
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 10},
	}
	rows := overviewRows(ov)
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	vp := viewport.New(0, 0)
	return tuiModel{
		overview:   ov,
		table:      t,
		vp:         vp,
		autoscroll: true,
		values:     make(map[string]map[int]float64),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.updateViewportHeight()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "t":
			m.summary = !m.summary
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case pointMsg:
		if m.values[msg.Quantity] == nil {
			m.values[msg.Quantity] = make(map[int]float64)
		}
		m.values[msg.Quantity][msg.AssetIndex] = msg.Value
	case stateMsg:
		m.state = msg.RunStateRow
	case adminMsg:
		m.admin = msg.active
	case overviewMsg:
		ov := msg.NetworkOverview
		m.overview = &ov
		m.table.SetRows(overviewRows(&ov))
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	h := m.height - m.headerHeight - bottomHeight - 2
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	bottom := m.renderBottom()
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		bottom,
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	return m.table.View()
}

func (m tuiModel) renderSummary() string {
	avg := func(q string) float64 {
		vals := m.values[q]
		if len(vals) == 0 {
			return 0
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}
	var flowTotal float64
	for _, v := range m.values[telemetry.QuantityPumpFlow] {
		flowTotal += v
	}
	open := 0
	for _, v := range m.values[telemetry.QuantityPipeStatus] {
		if v != 0 {
			open++
		}
	}
	return fmt.Sprintf("%sSUMMARY%s %scycle=%d%s %savg_press=%.2f%s %savg_head=%.2f%s %sflow_total=%.2f%s %spipes_open=%d/%d%s",
		colorBlue, colorReset,
		colorWhite(), m.state.Cycle, colorReset,
		colorGreen, avg(telemetry.QuantityJunctionPressure), colorReset,
		colorCyan, avg(telemetry.QuantityTankHead), colorReset,
		colorMagenta, flowTotal, colorReset,
		colorYellow, open, m.overview.Pipes, colorReset)
}

func (m tuiModel) renderBottom() string {
	adminColor := lipgloss.Color("9")
	if m.admin {
		adminColor = lipgloss.Color("10")
	}
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	summaryColor := lipgloss.Color("9")
	if m.summary {
		summaryColor = lipgloss.Color("10")
	}
	helpColor := lipgloss.Color("9")
	if m.help {
		helpColor = lipgloss.Color("10")
	}
	linkColor := colorRed
	if m.state.LinkUp {
		linkColor = colorGreen
	}
	adminIndicator := lipgloss.NewStyle().Foreground(adminColor).Render("●")
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	summaryIndicator := lipgloss.NewStyle().Foreground(summaryColor).Render("●")
	helpIndicator := lipgloss.NewStyle().Foreground(helpColor).Render("●")
	state := fmt.Sprintf("%sSTATE%s %sstate=%s%s %slink_up=%t%s %scycle=%d%s %ssim_t=%.0fs%s %scycle_ms=%.1f%s",
		colorBlue, colorReset,
		colorWhite(), m.state.State, colorReset,
		linkColor, m.state.LinkUp, colorReset,
		colorYellow, m.state.Cycle, colorReset,
		colorGray, m.state.SimTimeS, colorReset,
		colorMagenta, m.state.CycleMS, colorReset)
	line := fmt.Sprintf("%s | Admin API %s | Wrap %s | Scroll %s | Summary %s | Help %s", state, adminIndicator, wrapIndicator, scrollIndicator, summaryIndicator, helpIndicator)
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for log lines",
		" s  toggle auto-scroll",
		" t  toggle summary footer",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
