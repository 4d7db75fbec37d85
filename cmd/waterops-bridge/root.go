package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waterops-bridge",
	Short: "WaterOps hardware-in-the-loop bridge",
	Long:  "WaterOps-Bridge couples a hydraulic network model to a field controller over Modbus TCP and replays recorded runs.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Optional .env for endpoint and table overrides.
	_ = godotenv.Load()
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
}
