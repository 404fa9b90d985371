// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/clock"
)

// Store is an in-memory transaction record store. It is the single owner of
// its records: readers see them through View, which holds a shared lock,
// and writers change them through Update, which holds the exclusive lock
// and applies all changes of a call at once.
type Store struct {
	mu      sync.RWMutex
	records map[chainhash.Hash]*TransactionRecord

	clock clock.Clock
}

// A compile-time assertion to ensure that Store implements the RecordStore
// interface.
var _ RecordStore = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return NewStoreWithClock(clock.NewDefaultClock())
}

// NewStoreWithClock returns an empty in-memory store that timestamps
// inserted records using clk.
func NewStoreWithClock(clk clock.Clock) *Store {
	return &Store{
		records: make(map[chainhash.Hash]*TransactionRecord),
		clock:   clk,
	}
}

// View calls f with a reader over the current records. Writers are blocked
// until f returns.
func (s *Store) View(_ context.Context, f func(r RecordReader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return f(&reader{src: &memTx{base: s.records}})
}

// Update calls f with a writer. The changes made by f become visible only
// if f returns nil.
func (s *Store) Update(_ context.Context, f func(w RecordWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		base:  s.records,
		dirty: make(map[chainhash.Hash]*TransactionRecord),
	}
	if err := f(newWriter(tx, s.clock.Now)); err != nil {
		return err
	}

	tx.commit()

	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// memTx is a view of the in-memory records with an optional overlay of
// uncommitted writes. A nil record in dirty marks a removal.
type memTx struct {
	base  map[chainhash.Hash]*TransactionRecord
	dirty map[chainhash.Hash]*TransactionRecord
}

func (m *memTx) Fetch(txid chainhash.Hash) (*TransactionRecord, error) {
	if rec, ok := m.dirty[txid]; ok {
		return rec, nil
	}

	return m.base[txid], nil
}

func (m *memTx) ForEach(f func(rec *TransactionRecord) error) error {
	ids := make([]chainhash.Hash, 0, len(m.base)+len(m.dirty))
	for txid := range m.base {
		ids = append(ids, txid)
	}
	for txid := range m.dirty {
		if _, ok := m.base[txid]; !ok {
			ids = append(ids, txid)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	for _, txid := range ids {
		rec, _ := m.Fetch(txid)
		if rec == nil {
			continue
		}

		if err := f(rec); err != nil {
			return err
		}
	}

	return nil
}

func (m *memTx) Put(rec *TransactionRecord) error {
	m.dirty[rec.TxID] = rec
	return nil
}

func (m *memTx) Remove(txid chainhash.Hash) error {
	m.dirty[txid] = nil
	return nil
}

// commit folds the overlay into the base records.
func (m *memTx) commit() {
	for txid, rec := range m.dirty {
		if rec == nil {
			delete(m.base, txid)
			continue
		}

		m.base[txid] = rec
	}
}
