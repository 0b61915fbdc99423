package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Cell kinds as stored in the kind column.
const (
	kindText   = "s"
	kindNumber = "n"
)

var (
	_ driven.Store       = (*Store)(nil)
	_ driven.Provisioner = (*Store)(nil)
)

// Store keeps every collection of one ledger in a single SQLite file.
// Only non-empty cells are stored, so "last non-empty row" is the largest
// row number of a collection.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.omniticket/data/omniticket.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, eris.Wrap(err, "getting home directory")
		}
		dataDir = filepath.Join(home, ".omniticket", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, eris.Wrap(err, "creating data directory")
	}

	dbPath := filepath.Join(dataDir, "omniticket.db")

	// WAL lets the scheduler read task state while a sync is writing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "running migrations")
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// AppendRows adds rows below the last non-empty row of the collection.
func (s *Store) AppendRows(ctx context.Context, rng domain.Range, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "beginning append")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var last int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(row_num), 0) FROM cells WHERE collection = ?",
		string(rng.Collection)).Scan(&last); err != nil {
		return eris.Wrapf(err, "finding last row of %s", rng.Collection)
	}

	for i, row := range rows {
		if err := putRow(ctx, tx, rng.Collection, last+1+i, rng.StartCol, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrapf(err, "appending to %s", rng.Collection)
	}
	return nil
}

// ReadRange returns the rows inside the range. Gaps inside a row read back
// as empty strings, the way the Sheets API reports them.
func (s *Store) ReadRange(ctx context.Context, rng domain.Range) ([][]any, error) {
	toRow := rng.ToRow
	if toRow == 0 {
		toRow = math.MaxInt32
	}
	colEnd := math.MaxInt32
	if rng.Columns > 0 {
		colEnd = rng.StartCol + rng.Columns
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT row_num, col_num, kind, value
		FROM cells
		WHERE collection = ? AND row_num >= ? AND row_num <= ? AND col_num >= ? AND col_num < ?
		ORDER BY row_num, col_num
	`, string(rng.Collection), rng.Start(), toRow, rng.StartCol, colEnd)
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", rng.A1())
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		var rowNum, colNum int
		var kind, value string
		if err := rows.Scan(&rowNum, &colNum, &kind, &value); err != nil {
			return nil, eris.Wrap(err, "scanning cell")
		}

		idx := rowNum - rng.Start()
		for len(out) <= idx {
			out = append(out, []any{})
		}
		row := out[idx]
		for len(row) < colNum-rng.StartCol {
			row = append(row, "")
		}
		out[idx] = append(row, decodeCell(kind, value))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "iterating %s", rng.A1())
	}

	return out, nil
}

// WriteRange overwrites cells from the top-left corner of the range. Empty
// values clear the cell.
func (s *Store) WriteRange(ctx context.Context, rng domain.Range, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "beginning write")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i, row := range rows {
		if err := putRow(ctx, tx, rng.Collection, rng.Start()+i, rng.StartCol, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrapf(err, "writing %s", rng.A1())
	}
	return nil
}

// Ensure seeds an empty database with default settings and the ledger and
// rules headers. The id of a SQLite ledger is its file path; title only
// appears in logs.
func (s *Store) Ensure(ctx context.Context, title string) (string, bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cells").Scan(&count); err != nil {
		return "", false, eris.Wrap(err, "checking ledger contents")
	}
	if count > 0 {
		logger.Debug("Using existing ledger %q at %s", title, s.path)
		return s.path, false, nil
	}

	for _, block := range domain.Seed() {
		if err := s.WriteRange(ctx, block.Range, block.Rows); err != nil {
			return s.path, true, eris.Wrapf(err, "seeding %s", block.Range.Collection)
		}
	}

	logger.Info("Created ledger %q at %s", title, s.path)
	return s.path, true, nil
}

// putRow writes one row of cells, deleting cells whose value is empty.
func putRow(ctx context.Context, tx *sql.Tx, collection domain.Collection, rowNum, startCol int, cells []any) error {
	for j, v := range cells {
		col := startCol + j
		kind, text, ok := encodeCell(v)
		if !ok {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM cells WHERE collection = ? AND row_num = ? AND col_num = ?",
				string(collection), rowNum, col); err != nil {
				return eris.Wrapf(err, "clearing %s row %d", collection, rowNum)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cells (collection, row_num, col_num, kind, value)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(collection, row_num, col_num) DO UPDATE SET
				kind = excluded.kind,
				value = excluded.value
		`, string(collection), rowNum, col, kind, text); err != nil {
			return eris.Wrapf(err, "writing %s row %d", collection, rowNum)
		}
	}
	return nil
}

// encodeCell returns the stored kind and text of a cell, or false when the
// cell is empty.
func encodeCell(v any) (kind, text string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", "", false
	case string:
		if t == "" {
			return "", "", false
		}
		return kindText, t, true
	case float64:
		return kindNumber, strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return kindNumber, strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return kindNumber, strconv.Itoa(t), true
	case int64:
		return kindNumber, strconv.FormatInt(t, 10), true
	case json.Number:
		return kindNumber, t.String(), true
	case decimal.Decimal:
		return kindNumber, t.String(), true
	case bool:
		return kindText, strconv.FormatBool(t), true
	default:
		return kindText, fmt.Sprint(t), true
	}
}

// decodeCell returns numbers as float64 and everything else as text.
func decodeCell(kind, text string) any {
	if kind == kindNumber {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return eris.Wrap(err, "creating migrations table")
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return eris.Wrap(err, "getting current version")
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return eris.Wrap(err, "reading migrations directory")
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_init.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return eris.Wrapf(err, "reading migration %s", name)
		}
		if err := s.apply(version, string(content)); err != nil {
			return eris.Wrapf(err, "executing migration %s", name)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}
