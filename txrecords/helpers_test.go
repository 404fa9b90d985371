// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb" // Register bdb driver.
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

var testTime = time.Unix(1700000000, 0)

// testHash returns a hash whose first byte is b, so hashes sort by b.
func testHash(b byte) chainhash.Hash {
	return chainhash.Hash{b, 0xaa, 0x55}
}

func testNote(value uint64) ShieldedNote {
	return ShieldedNote{
		Value:     value,
		Recipient: []byte{0x01, 0x02, byte(value)},
		Rseed:     [32]byte{byte(value), 0x7f},
	}
}

func testOutput(index uint32, value uint64) TransparentOutput {
	return TransparentOutput{
		Index:    index,
		Value:    value,
		PkScript: []byte{0x76, 0xa9, 0x14, byte(index)},
	}
}

// testRecord returns a record confirmed at height holding one note of each
// given Sapling value.
func testRecord(b byte, height BlockHeight,
	saplingValues ...uint64) *TransactionRecord {

	rec := &TransactionRecord{
		TxID:     testHash(b),
		Status:   ConfirmedAt(height),
		Received: testTime,
	}
	for _, v := range saplingValues {
		rec.SaplingNotes = append(rec.SaplingNotes, testNote(v))
	}

	return rec
}

// storeBackends lists constructors for every RecordStore implementation in
// this package.
var storeBackends = []struct {
	name     string
	newStore func(t *testing.T) RecordStore
}{
	{
		name: "memory",
		newStore: func(t *testing.T) RecordStore {
			return NewStoreWithClock(clock.NewTestClock(testTime))
		},
	},
	{
		name: "kvdb",
		newStore: func(t *testing.T) RecordStore {
			return newTestKVStore(t)
		},
	},
}

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "records.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second, false)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	store, err := NewKVStore(db, clock.NewTestClock(testTime))
	require.NoError(t, err)

	return store
}

func someHash(b byte) fn.Option[chainhash.Hash] {
	return fn.Some(testHash(b))
}
