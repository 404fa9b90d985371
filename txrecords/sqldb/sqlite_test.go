package sqldb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
	"github.com/zecwallet/zecwallet/txrecords"
)

// newTestSQLiteDB creates a migrated SQLite database in a temporary
// directory. Each test gets its own database file.
func newTestSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	dbConn, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to open sqlite database")

	t.Cleanup(func() {
		_ = dbConn.Close()
	})

	return dbConn
}

func newTestSQLiteStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewSQLiteStore(
		newTestSQLiteDB(t), clock.NewTestClock(testTime),
	)
	require.NoError(t, err)

	return store
}

// TestSQLiteStore runs the shared store tests against SQLite.
func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	runStoreTests(t, newTestSQLiteStore)
}

// TestSQLiteMigrationsIdempotent checks that applying the migrations to an
// up to date schema is a no-op.
func TestSQLiteMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbConn := newTestSQLiteDB(t)
	require.NoError(t, ApplySQLiteMigrations(dbConn))
}

// TestSQLiteCorruptRows checks that rows which cannot be mapped back to a
// record surface as data errors.
func TestSQLiteCorruptRows(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		setup []string
	}{
		{
			name: "note index gap",
			setup: []string{
				`UPDATE shielded_notes SET note_index = 5`,
			},
		},
		{
			name: "negative height",
			setup: []string{
				`UPDATE tx_records SET height = -1`,
			},
		},
		{
			name: "short spender",
			setup: []string{
				`UPDATE transparent_outputs SET spent_by = x'0102'`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dbConn := newTestSQLiteDB(t)
			store, err := NewSQLiteStore(
				dbConn, clock.NewTestClock(testTime),
			)
			require.NoError(t, err)

			rec := testRecord(1, 10, 100)
			rec.TransparentOutputs = []txrecords.TransparentOutput{
				{Index: 0, Value: 1},
			}
			insertRecords(t, store, rec)

			for _, stmt := range tc.setup {
				_, err := dbConn.Exec(stmt)
				require.NoError(t, err)
			}

			err = store.View(
				context.Background(),
				func(r txrecords.RecordReader) error {
					_, err := r.FetchRecord(rec.TxID)
					return err
				},
			)
			require.True(t, txrecords.IsError(err, txrecords.ErrData))

			err = store.View(
				context.Background(),
				func(r txrecords.RecordReader) error {
					return r.ForEachRecord(
						func(*txrecords.TransactionRecord) error {
							return nil
						},
					)
				},
			)
			require.True(t, txrecords.IsError(err, txrecords.ErrData))
		})
	}
}
