// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/zecwallet/zecwallet/txrecords"
	"github.com/zecwallet/zecwallet/txrecords/sqldb"
)

// openStore opens the record store selected by cfg. The returned function
// releases the underlying database.
func openStore(cfg *config) (txrecords.RecordStore, func() error, error) {
	clk := clock.NewDefaultClock()

	switch cfg.DBType {
	case dbTypeBolt:
		if _, err := os.Stat(cfg.DBPath); err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath,
				err)
		}

		db, err := walletdb.Open(
			"bdb", cfg.DBPath, true, cfg.DBTimeout, false,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open bdb database: %w", err)
		}

		store, err := txrecords.NewKVStore(db, clk)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		log.Debugf("Opened bdb record store %s", cfg.DBPath)

		return store, db.Close, nil

	case dbTypeSQLite:
		db, err := sqldb.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}

		log.Debugf("Opened sqlite record store %s", cfg.DBPath)

		return newSQLStore(db, clk, sqldb.NewSQLiteStore)

	case dbTypePostgres:
		db, err := sqldb.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		log.Debugf("Opened postgres record store")

		return newSQLStore(db, clk, sqldb.NewPostgresStore)

	default:
		return nil, nil, fmt.Errorf("unknown database type %q",
			cfg.DBType)
	}
}

func newSQLStore(db *sql.DB, clk clock.Clock,
	newStore func(*sql.DB, clock.Clock) (*sqldb.Store, error)) (
	txrecords.RecordStore, func() error, error) {

	store, err := newStore(db, clk)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return store, db.Close, nil
}
