package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// schemaTable records applied migration versions.
const schemaTable = "schema_migrations"

// Migration is one versioned schema change.
type Migration struct {
	Version string // YYYYMMDD_HHMMSS
	Name    string
	UpSQL   string
	DownSQL string
}

// Status describes which migrations in a source have been applied.
type Status struct {
	Applied []string
	Pending []string
}

// Migrate applies every migration in source that has not been applied yet,
// oldest first. Each migration runs in its own transaction, so a failure
// leaves earlier migrations committed and a rerun continues from the
// failed one.
func (db *DB) Migrate(ctx context.Context, source fs.FS) error {
	if err := db.ensureSchemaTable(ctx); err != nil {
		return err
	}

	migrations, err := LoadMigrations(source)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.apply(ctx, m.UpSQL, "INSERT INTO "+schemaTable+" (version, applied_at) VALUES (?, ?)",
			m.Version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown rolls back the most recently applied migration in source.
func (db *DB) MigrateDown(ctx context.Context, source fs.FS) error {
	if err := db.ensureSchemaTable(ctx); err != nil {
		return err
	}

	var latest string
	err := db.QueryRowContext(ctx, "SELECT version FROM "+schemaTable+" ORDER BY version DESC LIMIT 1").Scan(&latest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("finding latest migration: %w", err)
	}

	migrations, err := LoadMigrations(source)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	for _, m := range migrations {
		if m.Version != latest {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("migration %s has no down SQL", latest)
		}
		return db.apply(ctx, m.DownSQL, "DELETE FROM "+schemaTable+" WHERE version = ?", m.Version)
	}
	return fmt.Errorf("migration %s not found in source", latest)
}

// MigrationStatus reports applied and pending versions for source.
func (db *DB) MigrationStatus(ctx context.Context, source fs.FS) (Status, error) {
	if err := db.ensureSchemaTable(ctx); err != nil {
		return Status{}, err
	}
	migrations, err := LoadMigrations(source)
	if err != nil {
		return Status{}, err
	}
	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}

	var st Status
	for v := range applied {
		st.Applied = append(st.Applied, v)
	}
	sort.Strings(st.Applied)
	for _, m := range migrations {
		if !applied[m.Version] {
			st.Pending = append(st.Pending, m.Version)
		}
	}
	return st, nil
}

// apply runs body and the bookkeeping statement in one transaction.
func (db *DB) apply(ctx context.Context, body, bookkeeping string, args ...any) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (db *DB) ensureSchemaTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+schemaTable+` (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+schemaTable)
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrations: %w", err)
	}
	return applied, nil
}

// LoadMigrations reads *.up.sql / *.down.sql pairs from the root of source,
// sorted by version. Files that do not follow the naming scheme are ignored.
// A down file without an up file is an error.
func LoadMigrations(source fs.FS) ([]Migration, error) {
	if source == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading migration directory: %w", err)
	}

	byVersion := make(map[string]*Migration)
	downOnly := make(map[string]bool)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, up, ok := parseMigrationFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(source, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if up {
			m.UpSQL = string(body)
			m.Name = name
			delete(downOnly, version)
		} else {
			m.DownSQL = string(body)
			if m.UpSQL == "" {
				downOnly[version] = true
			}
		}
	}

	if len(downOnly) > 0 {
		orphans := make([]string, 0, len(downOnly))
		for v := range downOnly {
			orphans = append(orphans, v)
		}
		sort.Strings(orphans)
		return nil, fmt.Errorf("migrations without up file: %s", strings.Join(orphans, ", "))
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseMigrationFilename splits "20260301_090000_reservation_journal.up.sql"
// into version "20260301_090000", name "reservation_journal" and direction.
func parseMigrationFilename(file string) (version, name string, up, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return "", "", false, false
	}
	switch {
	case strings.HasSuffix(base, ".up"):
		base, up = strings.TrimSuffix(base, ".up"), true
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 || len(parts[0]) != 8 || len(parts[1]) != 6 {
		return "", "", false, false
	}
	if len(parts) == 3 {
		name = parts[2]
	}
	return parts[0] + "_" + parts[1], name, up, true
}
