// internal/core/db/migrations.go
package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	embeddedmigrations "github.com/KaIKuxy/eagle-library-player/migrations"
)

/*
 * Schema migrations.
 *
 * Migration files are embedded per dialect (migrations/sqlite,
 * migrations/postgres) and applied in filename order. The migrations table
 * records each applied file with the SHA-256 of its contents.
 *
 * Invariants:
 *   - An applied file whose checksum changed stops MigrateUp before any
 *     pending file runs.
 *   - A recorded migration with no embedded file is an error: the binary is
 *     older than the database.
 *   - A file and its bookkeeping row commit in one transaction.
 *
 * SQLite stores applied_at as RFC3339 text; PostgreSQL as a timestamp.
 */

// MigrationStatus reports whether one schema file has been applied.
type MigrationStatus struct {
	ID          string
	Checksum    string
	Applied     bool
	AppliedAt   *time.Time
	ExecutionMs int64
}

type migration struct {
	ID       string
	Checksum string
	SQL      string
}

type appliedRow struct {
	ID          string `db:"migration_id"`
	Checksum    string `db:"checksum"`
	AppliedAt   any    `db:"applied_at"`
	ExecutionMs int64  `db:"execution_ms"`
}

// schema binds a connection to its dialect's embedded files.
type schema struct {
	db    *sqlx.DB
	files []migration
}

var trackingTable = map[string]string{
	"sqlite3": `CREATE TABLE IF NOT EXISTS migrations (
		migration_id TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		execution_ms INTEGER NOT NULL,
		CHECK (applied_at LIKE '____-__-__T__:__:__Z')
	)`,
	"postgres": `CREATE TABLE IF NOT EXISTS migrations (
		migration_id TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		execution_ms INTEGER NOT NULL
	)`,
}

// MigrateUp applies pending migrations in filename order.
func MigrateUp(db *sqlx.DB) error {
	s, err := openSchema(db)
	if err != nil {
		return err
	}

	applied, err := s.applied()
	if err != nil {
		return err
	}
	if err := s.verify(applied); err != nil {
		return fmt.Errorf("migration checksum validation failed: %w", err)
	}

	for _, m := range s.files {
		if _, ok := applied[m.ID]; ok {
			continue
		}
		if err := s.apply(m); err != nil {
			return err
		}
	}
	return nil
}

// MigrateStatus lists every embedded migration with its applied state.
func MigrateStatus(db *sqlx.DB) ([]MigrationStatus, error) {
	s, err := openSchema(db)
	if err != nil {
		return nil, err
	}

	applied, err := s.applied()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(s.files))
	for _, m := range s.files {
		row, ok := applied[m.ID]
		if !ok {
			statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
			continue
		}
		status := MigrationStatus{
			ID:          row.ID,
			Checksum:    row.Checksum,
			Applied:     true,
			ExecutionMs: row.ExecutionMs,
		}
		if ts, ok := parseAppliedAt(row.AppliedAt); ok {
			status.AppliedAt = &ts
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// openSchema creates the tracking table and loads the dialect's files.
func openSchema(db *sqlx.DB) (*schema, error) {
	var (
		fsys fs.FS
		dir  string
	)
	switch db.DriverName() {
	case "sqlite3":
		fsys, dir = embeddedmigrations.SqliteMigrations, "sqlite"
	case "postgres":
		fsys, dir = embeddedmigrations.PostgresMigrations, "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.DriverName())
	}

	if _, err := db.Exec(trackingTable[db.DriverName()]); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := parseMigrationFiles(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}
	return &schema{db: db, files: files}, nil
}

// parseMigrationFiles reads dir's .sql files sorted by name.
func parseMigrationFiles(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(content)
		files = append(files, migration{
			ID:       e.Name(),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(content),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func (s *schema) applied() (map[string]appliedRow, error) {
	var rows []appliedRow
	if err := s.db.Select(&rows, "SELECT migration_id, checksum, applied_at, execution_ms FROM migrations"); err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}

	out := make(map[string]appliedRow, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

func (s *schema) verify(applied map[string]appliedRow) error {
	embedded := make(map[string]string, len(s.files))
	for _, m := range s.files {
		embedded[m.ID] = m.Checksum
	}

	for id, row := range applied {
		want, ok := embedded[id]
		if !ok {
			return fmt.Errorf("migration %s exists in database but not in embedded files", id)
		}
		if row.Checksum != want {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", id, want, row.Checksum)
		}
	}
	return nil
}

// apply runs m statement by statement; lib/pq rejects multi-statement Exec.
func (s *schema) apply(m migration) error {
	start := time.Now()

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
	}

	now := time.Now().UTC()
	var appliedAt any = now
	if tx.DriverName() == "sqlite3" {
		appliedAt = now.Format(time.RFC3339)
	}
	_, err = tx.Exec(
		tx.Rebind("INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)"),
		m.ID, m.Checksum, appliedAt, time.Since(start).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
	}
	return nil
}

// splitStatements splits on ';' and drops "--" comment lines and blanks.
// Semicolons inside string literals are not supported.
func splitStatements(sql string) []string {
	var statements []string
	for _, chunk := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// parseAppliedAt accepts SQLite's RFC3339 text and PostgreSQL's timestamp.
func parseAppliedAt(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		return ts, err == nil
	case []byte:
		ts, err := time.Parse(time.RFC3339, string(t))
		return ts, err == nil
	default:
		return time.Time{}, false
	}
}
