package report

import (
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
	"github.com/tebeka/atexit"
)

// IterationTraceWriter buffers IterationRow values and batch-writes them
// to a SQLite file, the same batched-insert-then-flush shape as
// sarchlab-akita/tracing/sqlite.go's SQLiteTraceWriter, scoped to this
// engine's per-iteration statistics instead of simulation tasks. A nil
// *IterationTraceWriter is valid and every method on it is a no-op, so
// callers can pass one unconditionally when no --trace-db was given.
type IterationTraceWriter struct {
	db        *sql.DB
	statement *sql.Stmt

	path      string
	batchSize int
	pending   []IterationRow
}

// NewIterationTraceWriter opens (creating if absent) a SQLite database at
// path and prepares the iteration-trace table and insert statement.
// Registers its own Flush with atexit so buffered rows are not lost if a
// fatal logging call exits the process before the caller flushes
// explicitly.
func NewIterationTraceWriter(path string) (*IterationTraceWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("report: opening trace db %q: %w", path, err)
	}

	w := &IterationTraceWriter{db: db, path: path, batchSize: 1000}

	if err := w.createTable(); err != nil {
		return nil, err
	}

	if err := w.prepareStatement(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = w.Flush() })

	return w, nil
}

func (w *IterationTraceWriter) createTable() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS iteration_trace (
			stage          TEXT NOT NULL,
			itry           INTEGER NOT NULL,
			pres_fac       REAL NOT NULL,
			overused_nodes INTEGER NOT NULL,
			wire_length    INTEGER NOT NULL,
			max_delay      REAL NOT NULL,
			sa_temperature REAL NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("report: creating iteration_trace table: %w", err)
	}

	return nil
}

func (w *IterationTraceWriter) prepareStatement() error {
	stmt, err := w.db.Prepare(`
		INSERT INTO iteration_trace
			(stage, itry, pres_fac, overused_nodes, wire_length, max_delay, sa_temperature)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("report: preparing iteration_trace insert: %w", err)
	}

	w.statement = stmt

	return nil
}

// Write buffers one row, flushing automatically once the batch size is
// reached.
func (w *IterationTraceWriter) Write(row IterationRow) error {
	if w == nil {
		return nil
	}

	w.pending = append(w.pending, row)

	if len(w.pending) >= w.batchSize {
		return w.Flush()
	}

	return nil
}

// Flush writes every buffered row to the database in one transaction.
func (w *IterationTraceWriter) Flush() error {
	if w == nil || len(w.pending) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("report: beginning trace flush: %w", err)
	}

	stmt := tx.Stmt(w.statement)

	for _, row := range w.pending {
		_, err := stmt.Exec(row.Stage, row.Itry, row.PresFac, row.OverusedNodes,
			row.WireLength, row.MaxDelay, row.SATemperature)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("report: inserting trace row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("report: committing trace flush: %w", err)
	}

	w.pending = nil

	return nil
}

// Close flushes any pending rows and closes the underlying database.
func (w *IterationTraceWriter) Close() error {
	if w == nil {
		return nil
	}

	if err := w.Flush(); err != nil {
		return err
	}

	return w.db.Close()
}
