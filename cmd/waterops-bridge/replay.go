package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"waterops-bridge/internal/bridge"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded cycle history file",
	Long:  "replay feeds cycle rows from a log file back into GreptimeDB or STDOUT at the recorded cadence.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, cleanup, err := newWriter(replayPrintOnly, false, "", "")
		if err != nil {
			return err
		}
		defer cleanup()
		return bridge.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to cycle history log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print cycle history to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
