// ColorStdoutWriter prints human-friendly, colorized cycle output to STDOUT.
package bridge

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"waterops-bridge/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints cycle rows using ANSI colors.
type ColorStdoutWriter struct {
	overview *telemetry.NetworkOverview
	out      io.Writer
	once     sync.Once
}

var quantityColors = map[string]string{
	telemetry.QuantityJunctionPressure: colorGreen,
	telemetry.QuantityTankHead:         colorCyan,
	telemetry.QuantityPumpFlow:         colorMagenta,
	telemetry.QuantityPipeStatus:       colorYellow,
	telemetry.QuantityPumpSetting:      colorBlue,
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
// The overview may be nil if the network is not loaded yet.
func NewColorStdoutWriter(overview *telemetry.NetworkOverview) *ColorStdoutWriter {
	return &ColorStdoutWriter{overview: overview, out: os.Stdout}
}

// SetOverview stores the overview printed before the first row.
func (w *ColorStdoutWriter) SetOverview(ov telemetry.NetworkOverview) {
	w.overview = &ov
}

func (w *ColorStdoutWriter) printOverview() {
	if w.overview == nil {
		return
	}

	fmt.Fprintln(w.out, "Network Overview:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Model:\t%s\n", w.overview.Model)
	fmt.Fprintf(tw, "Junctions:\t%d\n", w.overview.Junctions)
	fmt.Fprintf(tw, "Reservoirs:\t%d\n", w.overview.Reservoirs)
	fmt.Fprintf(tw, "Tanks:\t%d\n", w.overview.Tanks)
	fmt.Fprintf(tw, "Pipes:\t%d\n", w.overview.Pipes)
	fmt.Fprintf(tw, "Pumps:\t%d\n", w.overview.Pumps)
	fmt.Fprintf(tw, "Valves:\t%d\n", w.overview.Valves)
	fmt.Fprintf(tw, "Hydraulic Step:\t%s\n", w.overview.HydStep)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single cycle row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.CycleRow) error {
	w.once.Do(w.printOverview)

	qColor, ok := quantityColors[row.Quantity]
	if !ok {
		qColor = colorWhite()
	}

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%splant=%s%s ", colorBlue, row.PlantID, colorReset)
	fmt.Fprintf(w.out, "%scycle=%d%s ", colorWhite(), row.Cycle, colorReset)
	fmt.Fprintf(w.out, "%s%s[%d]=%.3f%s ", qColor, row.Quantity, row.AssetIndex, row.Value, colorReset)
	fmt.Fprintf(w.out, "%ssim_t=%.0fs%s", colorGray, row.SimTimeS, colorReset)
	fmt.Fprintln(w.out)
	return nil
}

func colorWhite() string { return "\x1b[37m" }

// WriteBatch outputs multiple cycle rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.CycleRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteState prints run state metrics to STDOUT.
func (w *ColorStdoutWriter) WriteState(row telemetry.RunStateRow) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s %sSTATE%s state=%s link_up=%t cycle=%d sim_t=%.0fs cycle_ms=%.1f\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, colorReset, row.State, row.LinkUp, row.Cycle,
		row.SimTimeS, row.CycleMS)
	return nil
}
