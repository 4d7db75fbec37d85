package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"waterops-bridge/internal/telemetry"
)

// greptimeClient is the ingester surface the writer uses; tests
// substitute a mock.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes cycle history to GreptimeDB via the ingester
// client. Tables are created automatically on first ingest.
type GreptimeDBWriter struct {
	client      greptimeClient
	pointsTable string
	stateTable  string
}

// NewGreptimeDBWriter connects to a GreptimeDB endpoint given as
// host:port (the gRPC ingest port).
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
		portStr = "4001"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("greptime endpoint %q: %w", endpoint, err)
	}

	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	cli, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client:      cli,
		pointsTable: telemetry.CycleTableName,
		stateTable:  telemetry.RunStateTableName,
	}, nil
}

// Write inserts a single cycle row.
func (w *GreptimeDBWriter) Write(row telemetry.CycleRow) error {
	return w.WriteBatch([]telemetry.CycleRow{row})
}

// WriteBatch inserts multiple cycle rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.CycleRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := cycleTable(w.pointsTable, rows)
	if err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteState inserts a run state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.RunStateRow) error {
	tbl, err := stateTable(w.stateTable, row)
	if err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

func cycleTable(name string, rows []telemetry.CycleRow) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(
		tbl.AddTagColumn("plant_id", types.STRING),
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("quantity", types.STRING),
		tbl.AddTagColumn("asset_index", types.INT64),
		tbl.AddFieldColumn("cycle", types.INT64),
		tbl.AddFieldColumn("value", types.FLOAT64),
		tbl.AddFieldColumn("sim_time_s", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.PlantID, r.RunID, r.Quantity, int64(r.AssetIndex),
			int64(r.Cycle), r.Value, r.SimTimeS, r.Timestamp); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func stateTable(name string, row telemetry.RunStateRow) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(
		tbl.AddTagColumn("plant_id", types.STRING),
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddFieldColumn("state", types.STRING),
		tbl.AddFieldColumn("link_up", types.BOOLEAN),
		tbl.AddFieldColumn("cycle", types.INT64),
		tbl.AddFieldColumn("sim_time_s", types.FLOAT64),
		tbl.AddFieldColumn("cycle_ms", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return nil, err
	}
	if err := tbl.AddRow(row.PlantID, row.RunID, row.State, row.LinkUp,
		int64(row.Cycle), row.SimTimeS, row.CycleMS, row.Timestamp); err != nil {
		return nil, err
	}
	return tbl, nil
}
