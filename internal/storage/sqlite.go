package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/tablemap/internal/model"
)

const currentSchemaVersion = 1

// ScanSummary describes a recorded scan without its items.
type ScanSummary struct {
	ID         string    `json:"id"`
	Dir        string    `json:"dir"`
	ScannedAt  time.Time `json:"scannedAt"`
	FileCount  int       `json:"fileCount"`
	TableCount int       `json:"tableCount"`
}

// SQLiteStorage records scan history in a SQLite database.
// Save appends a scan; LatestScan returns the most recent one of a directory.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("history schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY NOT NULL,
			dir TEXT NOT NULL,
			scanned_at INTEGER NOT NULL,
			file_count INTEGER NOT NULL DEFAULT 0,
			table_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_scans_dir ON scans(dir, scanned_at);

		CREATE TABLE IF NOT EXISTS scan_items (
			scan_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			source_name TEXT NOT NULL,
			PRIMARY KEY (scan_id, position),
			FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS item_tables (
			scan_id TEXT NOT NULL,
			item_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			table_name TEXT NOT NULL,
			PRIMARY KEY (scan_id, item_position, position),
			FOREIGN KEY (scan_id, item_position) REFERENCES scan_items(scan_id, position) ON DELETE CASCADE
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save appends the scan to the history.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(scan *model.Scan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO scans (id, dir, scanned_at, file_count, table_count)
		VALUES (?, ?, ?, ?, ?)
	`, scan.ID, scan.Dir, scan.ScannedAt.UnixNano(), len(scan.Items), len(scan.TableNames())); err != nil {
		return err
	}

	itemStmt, err := tx.Prepare(`
		INSERT INTO scan_items (scan_id, position, source_name)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	tableStmt, err := tx.Prepare(`
		INSERT INTO item_tables (scan_id, item_position, position, table_name)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer tableStmt.Close()

	for i, item := range scan.Items {
		if _, err := itemStmt.Exec(scan.ID, i, item.SourceName); err != nil {
			return err
		}
		for j, table := range item.Tables {
			if _, err := tableStmt.Exec(scan.ID, i, j, table); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LatestScan returns the most recent scan of dir.
// Returns ErrNoScan if dir has never been recorded.
func (s *SQLiteStorage) LatestScan(dir string) (*model.Scan, error) {
	row := s.db.QueryRow(`
		SELECT id, dir, scanned_at FROM scans
		WHERE dir = ?
		ORDER BY scanned_at DESC
		LIMIT 1
	`, dir)
	return s.loadScan(row)
}

// loadScan reads the scan header from row and then its items and tables.
func (s *SQLiteStorage) loadScan(row *sql.Row) (*model.Scan, error) {
	var scan model.Scan
	var scannedAt int64
	if err := row.Scan(&scan.ID, &scan.Dir, &scannedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoScan
		}
		return nil, err
	}
	scan.ScannedAt = time.Unix(0, scannedAt)

	rows, err := s.db.Query(`
		SELECT source_name FROM scan_items
		WHERE scan_id = ?
		ORDER BY position
	`, scan.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scan.Items = []model.QueryItem{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		scan.Items = append(scan.Items, model.NewQueryItem(name, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tableRows, err := s.db.Query(`
		SELECT item_position, table_name FROM item_tables
		WHERE scan_id = ?
		ORDER BY item_position, position
	`, scan.ID)
	if err != nil {
		return nil, err
	}
	defer tableRows.Close()

	for tableRows.Next() {
		var pos int
		var table string
		if err := tableRows.Scan(&pos, &table); err != nil {
			return nil, err
		}
		if pos >= 0 && pos < len(scan.Items) {
			scan.Items[pos].Tables = append(scan.Items[pos].Tables, table)
		}
	}
	if err := tableRows.Err(); err != nil {
		return nil, err
	}

	return &scan, nil
}

// ListScans returns summaries of recorded scans, newest first.
// A limit of zero or less returns every scan.
func (s *SQLiteStorage) ListScans(limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, dir, scanned_at, file_count, table_count
		FROM scans
		ORDER BY scanned_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScanSummary
	for rows.Next() {
		var sum ScanSummary
		var scannedAt int64
		if err := rows.Scan(&sum.ID, &sum.Dir, &scannedAt, &sum.FileCount, &sum.TableCount); err != nil {
			return nil, err
		}
		sum.ScannedAt = time.Unix(0, scannedAt)
		result = append(result, sum)
	}
	return result, rows.Err()
}
