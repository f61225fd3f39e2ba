// Package database provides SQLite connectivity for Café Core.
//
// The database holds the reservation journal only. Live presence is kept
// in memory by the presence store and is never written here.
//
// This package manages:
//   - Connection setup with WAL mode and a busy timeout
//   - Forward/backward schema migrations read from an fs.FS
//   - Lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Migrations are additive: new columns must be
// nullable or carry a default.
package database
