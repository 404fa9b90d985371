package sqldb

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"github.com/zecwallet/zecwallet/txrecords"
)

var testTime = time.Unix(1700000000, 0)

func testHash(b byte) chainhash.Hash {
	return chainhash.Hash{b, 0x42}
}

func testRecord(b byte, height txrecords.BlockHeight,
	saplingValues ...uint64) *txrecords.TransactionRecord {

	rec := &txrecords.TransactionRecord{
		TxID:     testHash(b),
		Status:   txrecords.ConfirmedAt(height),
		Received: testTime,
	}
	for _, v := range saplingValues {
		rec.SaplingNotes = append(rec.SaplingNotes, txrecords.ShieldedNote{
			Value:     v,
			Recipient: []byte{0x0b, byte(v)},
			Rseed:     [32]byte{byte(v)},
		})
	}

	return rec
}

func fetchRecord(t *testing.T, store txrecords.RecordStore,
	txid chainhash.Hash) *txrecords.TransactionRecord {

	t.Helper()

	var rec *txrecords.TransactionRecord
	err := store.View(
		context.Background(), func(r txrecords.RecordReader) error {
			res, err := r.FetchRecord(txid)
			rec = res.UnwrapOr(nil)

			return err
		},
	)
	require.NoError(t, err)

	return rec
}

func insertRecords(t *testing.T, store txrecords.RecordStore,
	recs ...*txrecords.TransactionRecord) {

	t.Helper()

	err := store.Update(
		context.Background(), func(w txrecords.RecordWriter) error {
			for _, rec := range recs {
				if err := w.InsertRecord(rec); err != nil {
					return err
				}
			}

			return nil
		},
	)
	require.NoError(t, err)
}

// runStoreTests exercises a SQL record store end to end. It is shared by the
// tests of every dialect.
func runStoreTests(t *testing.T, newStore func(t *testing.T) *Store) {
	t.Run("round trip", func(t *testing.T) {
		store := newStore(t)

		rec := testRecord(1, 500_000, 30_000, 12)
		rec.SaplingNotes[1].Recipient = nil
		rec.SaplingNotes[1].PendingSpent = fn.Some(testHash(9))
		rec.OrchardNotes = []txrecords.ShieldedNote{{
			Value: math.MaxInt64,
			Rseed: [32]byte{0xff},
			Spent: fn.Some(testHash(8)),
		}}
		rec.TransparentOutputs = []txrecords.TransparentOutput{
			{Index: 0, Value: 5_000, PkScript: []byte{0x51}},
			{Index: 7, Value: 1, Spent: fn.Some(testHash(7))},
		}
		insertRecords(t, store, rec)

		require.Equal(t, rec, fetchRecord(t, store, rec.TxID))
		require.Nil(t, fetchRecord(t, store, testHash(2)))
	})

	t.Run("unconfirmed without time", func(t *testing.T) {
		store := newStore(t)

		rec := testRecord(1, 0)
		rec.Status = txrecords.Unconfirmed()
		rec.Received = time.Time{}
		insertRecords(t, store, rec)

		got := fetchRecord(t, store, rec.TxID)
		require.Equal(t, txrecords.Unconfirmed(), got.Status)
		require.True(t, testTime.Equal(got.Received))
	})

	t.Run("ordered iteration", func(t *testing.T) {
		store := newStore(t)
		insertRecords(
			t, store, testRecord(3, 1, 3), testRecord(1, 1, 1),
			testRecord(2, 1, 2, 2),
		)

		var (
			ids   []chainhash.Hash
			notes int
		)
		err := store.View(
			context.Background(),
			func(r txrecords.RecordReader) error {
				return r.ForEachRecord(
					func(rec *txrecords.TransactionRecord) error {
						ids = append(ids, rec.TxID)
						notes += len(rec.SaplingNotes)

						return nil
					},
				)
			},
		)
		require.NoError(t, err)
		require.Equal(t, []chainhash.Hash{
			testHash(1), testHash(2), testHash(3),
		}, ids)
		require.Equal(t, 4, notes)
	})

	t.Run("spends", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		rec := testRecord(1, 10, 100, 200)
		rec.TransparentOutputs = []txrecords.TransparentOutput{
			{Index: 1, Value: 300, PkScript: []byte{0x51}},
		}
		insertRecords(t, store, rec)

		id := txrecords.NewNoteID(rec.TxID, txrecords.Sapling, 0)
		err := store.Update(ctx, func(w txrecords.RecordWriter) error {
			err := w.MarkNoteSpent(id, testHash(5))
			if err != nil {
				return err
			}

			return w.MarkOutputSpent(
				wire.OutPoint{Hash: rec.TxID, Index: 1},
				testHash(5),
			)
		})
		require.NoError(t, err)

		err = store.View(ctx, func(r txrecords.RecordReader) error {
			unspent, err := r.UnspentNotes(
				rec.TxID, txrecords.Sapling,
			)
			require.NoError(t, err)
			require.Len(t, unspent, 1)
			require.Equal(t, uint64(200), unspent[0].Note.Value)

			return nil
		})
		require.NoError(t, err)

		got := fetchRecord(t, store, rec.TxID)
		require.Equal(
			t, fn.Some(testHash(5)), got.TransparentOutputs[0].Spent,
		)

		err = store.Update(ctx, func(w txrecords.RecordWriter) error {
			return w.MarkNoteSpent(id, testHash(6))
		})
		require.True(t, txrecords.IsError(err, txrecords.ErrAlreadySpent))
	})

	t.Run("rollback", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		insertRecords(t, store, testRecord(1, 10, 100))

		errAbort := errors.New("abort")
		err := store.Update(ctx, func(w txrecords.RecordWriter) error {
			err := w.InsertRecord(testRecord(2, 10, 100))
			require.NoError(t, err)

			err = w.RemoveRecord(testHash(1))
			require.NoError(t, err)

			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		require.NotNil(t, fetchRecord(t, store, testHash(1)))
		require.Nil(t, fetchRecord(t, store, testHash(2)))
	})

	t.Run("remove and duplicate", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		insertRecords(t, store, testRecord(1, 10, 100))

		err := store.Update(ctx, func(w txrecords.RecordWriter) error {
			return w.InsertRecord(testRecord(1, 11))
		})
		require.True(
			t, txrecords.IsError(err, txrecords.ErrDuplicateRecord),
		)

		err = store.Update(ctx, func(w txrecords.RecordWriter) error {
			return w.RemoveRecord(testHash(1))
		})
		require.NoError(t, err)
		require.Nil(t, fetchRecord(t, store, testHash(1)))
	})

	t.Run("value out of range", func(t *testing.T) {
		store := newStore(t)

		err := store.Update(
			context.Background(),
			func(w txrecords.RecordWriter) error {
				return w.InsertRecord(
					testRecord(1, 10, math.MaxUint64),
				)
			},
		)
		require.True(t, txrecords.IsError(err, txrecords.ErrInput))
		require.ErrorIs(t, err, ErrCastingOverflow)
		require.Nil(t, fetchRecord(t, store, testHash(1)))
	})
}
