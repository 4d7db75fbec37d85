package bridge

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"waterops-bridge/internal/telemetry"
)

// SQLiteWriter persists cycle history to a local SQLite database, one
// row per quantity and asset per cycle.
type SQLiteWriter struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cycle_points (
	plant_id    TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	quantity    TEXT NOT NULL,
	asset_index INTEGER NOT NULL,
	cycle       INTEGER NOT NULL,
	value       REAL NOT NULL,
	sim_time_s  REAL NOT NULL,
	ts          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycle_points_run ON cycle_points (run_id, cycle);
CREATE TABLE IF NOT EXISTS run_state (
	plant_id   TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	state      TEXT NOT NULL,
	link_up    INTEGER NOT NULL,
	cycle      INTEGER NOT NULL,
	sim_time_s REAL NOT NULL,
	cycle_ms   REAL NOT NULL,
	ts         TIMESTAMP NOT NULL
);
`

// NewSQLiteWriter opens (or creates) the database at path and ensures
// the schema exists.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteWriter{db: db}, nil
}

// Write persists a single cycle row.
func (w *SQLiteWriter) Write(row telemetry.CycleRow) error {
	return w.WriteBatch([]telemetry.CycleRow{row})
}

// WriteBatch persists multiple cycle rows in one transaction.
func (w *SQLiteWriter) WriteBatch(rows []telemetry.CycleRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO cycle_points VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.PlantID, r.RunID, r.Quantity, r.AssetIndex,
			int64(r.Cycle), r.Value, r.SimTimeS, r.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// WriteState persists a run state row.
func (w *SQLiteWriter) WriteState(row telemetry.RunStateRow) error {
	_, err := w.db.Exec(`INSERT INTO run_state VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.PlantID, row.RunID, row.State, row.LinkUp,
		int64(row.Cycle), row.SimTimeS, row.CycleMS, row.Timestamp)
	return err
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
