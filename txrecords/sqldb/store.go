// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/zecwallet/zecwallet/txrecords"

	// Register the database/sql drivers of both dialects.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	// ErrNilDB is returned when a store is created without a database
	// handle.
	ErrNilDB = errors.New("nil database handle")
)

// dialect holds what differs between the supported SQL engines.
type dialect struct {
	name string

	// viewOpts and updateOpts are the transaction options of View and
	// Update.
	viewOpts   *sql.TxOptions
	updateOpts *sql.TxOptions

	queries queries
}

var (
	sqliteDialect = dialect{
		name:    "sqlite",
		queries: newQueries(false),
	}

	postgresDialect = dialect{
		name: "postgres",
		viewOpts: &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  true,
		},
		updateOpts: &sql.TxOptions{
			Isolation: sql.LevelSerializable,
		},
		queries: newQueries(true),
	}
)

// Store is a transaction record store kept in a SQL database. The schema
// must have been created with the matching Apply*Migrations function.
type Store struct {
	db      *sql.DB
	dialect dialect
	clock   clock.Clock
}

// A compile-time assertion to ensure that Store implements the
// txrecords.RecordStore interface.
var _ txrecords.RecordStore = (*Store)(nil)

// NewSQLiteStore creates a record store over a SQLite database.
func NewSQLiteStore(db *sql.DB, clk clock.Clock) (*Store, error) {
	return newStore(db, clk, sqliteDialect)
}

// NewPostgresStore creates a record store over a PostgreSQL database.
func NewPostgresStore(db *sql.DB, clk clock.Clock) (*Store, error) {
	return newStore(db, clk, postgresDialect)
}

func newStore(db *sql.DB, clk clock.Clock, d dialect) (*Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	return &Store{
		db:      db,
		dialect: d,
		clock:   clk,
	}, nil
}

// View calls f with a reader over a single read transaction.
func (s *Store) View(ctx context.Context,
	f func(r txrecords.RecordReader) error) error {

	return execInTx(ctx, s.db, s.dialect.viewOpts, func(tx *sql.Tx) error {
		return f(txrecords.NewReader(s.backend(ctx, tx)))
	})
}

// Update calls f with a writer over a single read-write transaction that is
// committed only if f returns nil.
func (s *Store) Update(ctx context.Context,
	f func(w txrecords.RecordWriter) error) error {

	return execInTx(ctx, s.db, s.dialect.updateOpts, func(tx *sql.Tx) error {
		return f(txrecords.NewWriter(s.backend(ctx, tx), s.clock.Now))
	})
}

func (s *Store) backend(ctx context.Context, tx *sql.Tx) *sqlBackend {
	return &sqlBackend{
		ctx: ctx,
		tx:  tx,
		q:   &s.dialect.queries,
	}
}

// execInTx runs f inside a transaction, committing on success and rolling
// back on error.
func execInTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions,
	f func(*sql.Tx) error) error {

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return dbError("begin transaction", err)
	}

	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("Unable to roll back transaction: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit transaction", err)
	}

	return nil
}

// dbError wraps a database failure in a txrecords.Error.
func dbError(desc string, err error) error {
	return txrecords.Error{
		Code: txrecords.ErrDatabase,
		Desc: desc,
		Err:  err,
	}
}

// dataError reports stored data that cannot be mapped back to a record.
func dataError(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)

	return txrecords.Error{
		Code: txrecords.ErrData,
		Desc: "invalid stored record",
		Err:  err,
	}
}
