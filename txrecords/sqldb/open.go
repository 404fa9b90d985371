package sqldb

import (
	"database/sql"
	"fmt"
)

// SQLiteDSN returns the connection string used for the SQLite database file
// at path.
func SQLiteDSN(path string) string {
	// Enable foreign keys (required for proper constraint enforcement).
	dsn := path + "?_pragma=foreign_keys=on"

	// Enable WAL mode so readers do not block the writer.
	dsn += "&_pragma=journal_mode=WAL"

	// Take the write lock when a transaction begins to avoid upgrade
	// deadlocks between concurrent writers.
	dsn += "&_txlock=immediate"

	// Retry acquiring locks for up to 5 seconds instead of failing with
	// SQLITE_BUSY.
	dsn += "&_pragma=busy_timeout=5000"

	return dsn
}

// OpenSQLite opens the SQLite database file at path and brings its schema up
// to date.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := ApplySQLiteMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenPostgres connects to the PostgreSQL database described by dsn and
// brings its schema up to date.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := ApplyPostgresMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
