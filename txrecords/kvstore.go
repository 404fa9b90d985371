// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/clock"
)

// recordsBucketKey is the top level bucket holding the TLV encoded
// transaction records keyed by transaction id.
var recordsBucketKey = []byte("txrecords")

// KVStore is a transaction record store persisted in a walletdb key-value
// database.
type KVStore struct {
	db    walletdb.DB
	clock clock.Clock
}

// A compile-time assertion to ensure that KVStore implements the
// RecordStore interface.
var _ RecordStore = (*KVStore)(nil)

// NewKVStore returns a store backed by db, creating the records bucket if
// it does not exist.
func NewKVStore(db walletdb.DB, clk clock.Clock) (*KVStore, error) {
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		_, err := tx.CreateTopLevelBucket(recordsBucketKey)
		return err
	})
	if err != nil {
		return nil, storeError(ErrDatabase, "failed to create "+
			"records bucket", err)
	}

	return &KVStore{db: db, clock: clk}, nil
}

// View calls f with a reader over a read transaction of the database.
func (s *KVStore) View(_ context.Context,
	f func(r RecordReader) error) error {

	return walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(recordsBucketKey)
		if bucket == nil {
			return storeError(ErrDatabase, "records bucket "+
				"missing", nil)
		}

		return f(&reader{src: &kvTx{read: bucket}})
	})
}

// Update calls f with a writer over a read-write transaction of the
// database. The transaction is committed only if f returns nil.
func (s *KVStore) Update(_ context.Context,
	f func(w RecordWriter) error) error {

	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		bucket := tx.ReadWriteBucket(recordsBucketKey)
		if bucket == nil {
			return storeError(ErrDatabase, "records bucket "+
				"missing", nil)
		}

		kv := &kvTx{read: bucket, write: bucket}

		return f(newWriter(kv, s.clock.Now))
	})
}

// kvTx adapts a records bucket to the WriteBackend interface. write is nil in
// read transactions.
type kvTx struct {
	read  walletdb.ReadBucket
	write walletdb.ReadWriteBucket
}

func (k *kvTx) Fetch(txid chainhash.Hash) (*TransactionRecord, error) {
	v := k.read.Get(txid[:])
	if v == nil {
		return nil, nil
	}

	rec, err := decodeRecord(txid, v)
	if err != nil {
		return nil, storeError(ErrData, "failed to decode record "+
			txid.String(), err)
	}

	return rec, nil
}

// ForEach relies on the bucket iterating keys in byte order.
func (k *kvTx) ForEach(f func(rec *TransactionRecord) error) error {
	return k.read.ForEach(func(key, v []byte) error {
		txid, err := chainhash.NewHash(key)
		if err != nil {
			return storeError(ErrData, "invalid record key", err)
		}

		rec, err := decodeRecord(*txid, v)
		if err != nil {
			return storeError(ErrData, "failed to decode record "+
				txid.String(), err)
		}

		return f(rec)
	})
}

func (k *kvTx) Put(rec *TransactionRecord) error {
	v, err := encodeRecord(rec)
	if err != nil {
		return storeError(ErrData, "failed to encode record "+
			rec.TxID.String(), err)
	}

	if err := k.write.Put(rec.TxID[:], v); err != nil {
		return storeError(ErrDatabase, "failed to store record "+
			rec.TxID.String(), err)
	}

	return nil
}

func (k *kvTx) Remove(txid chainhash.Hash) error {
	if err := k.write.Delete(txid[:]); err != nil {
		return storeError(ErrDatabase, "failed to delete record "+
			txid.String(), err)
	}

	return nil
}
