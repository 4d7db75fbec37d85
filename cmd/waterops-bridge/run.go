package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"waterops-bridge/internal/admin"
	"waterops-bridge/internal/bridge"
	"waterops-bridge/internal/config"
	"waterops-bridge/internal/epanet"
	"waterops-bridge/internal/fieldlink"
	"waterops-bridge/internal/hydraulic"
	"waterops-bridge/internal/logging"
)

var (
	runPrintOnly  bool
	runTUI        bool
	runConfigPath string
	runSchemaPath string
	runInterval   time.Duration
	runLogFile    string
	runHistoryDB  string
)

var runCmd = &cobra.Command{
	Use:   "run <network.inp>",
	Short: "Run the bridge against a network model",
	Long:  "run connects to the field controller, loads the given network model and drives the control cycle until interrupted.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("exactly one network model file required")
		}
		if !strings.HasSuffix(strings.ToLower(args[0]), ".inp") {
			return fmt.Errorf("network model must be an .inp file: %s", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		if env := os.Getenv("PLANT_ID"); env != "" {
			cfg.PlantID = env
		}

		interval := runInterval
		if env := os.Getenv("TICK_INTERVAL"); env != "" {
			d, err := time.ParseDuration(env)
			if err != nil {
				return err
			}
			interval = d
		}

		logger := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), logger))
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			cancel()
		}()

		link, err := fieldlink.New(fieldlink.Config{
			Host:   cfg.PLC.Host,
			Port:   cfg.PLC.Port,
			UnitID: cfg.PLC.UnitID,
		})
		if err != nil {
			return err
		}
		eng, err := epanet.New()
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriter(runPrintOnly, runTUI, runLogFile, runHistoryDB)
		if err != nil {
			return err
		}
		defer cleanup()

		b := bridge.New(cfg.PlantID, args[0], link, hydraulic.NewAdapter(eng), writer, interval)

		srv := admin.NewServer(b, cancel)
		go func() {
			logger.Info("admin API listening", "addr", cfg.Admin.Listen)
			if err := srv.Start(ctx, cfg.Admin.Listen); err != nil && err != http.ErrServerClosed {
				logger.Error("admin server failed", "err", err)
			}
		}()
		if aw, ok := writer.(bridge.AdminStatusWriter); ok {
			aw.SetAdminStatus(true)
		}

		if err := b.Run(ctx); err != nil {
			return err
		}
		logger.Info("stopped by user")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print cycle history to STDOUT instead of writing to DB")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render a live console instead of plain log output")
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/bridge.yaml", "Path to bridge configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/bridge.cue", "Path to CUE schema file")
	runCmd.Flags().DurationVar(&runInterval, "interval", time.Second, "Wall-clock cycle interval (e.g. 500ms, 2s)")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export cycle history (JSONL, plus .state sidecar)")
	runCmd.Flags().StringVar(&runHistoryDB, "history-db", "", "Path to a local SQLite history database")
}
