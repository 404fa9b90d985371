// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Backend is the minimal record access a storage engine provides. The
// engine's transaction scopes every call.
type Backend interface {
	// ForEach visits every record in transaction id byte order.
	ForEach(f func(rec *TransactionRecord) error) error

	// Fetch returns the record with the given id or nil if it is not
	// stored.
	Fetch(txid chainhash.Hash) (*TransactionRecord, error)
}

// WriteBackend is a Backend that can also store records.
type WriteBackend interface {
	Backend

	// Put stores rec, replacing any record with the same id.
	Put(rec *TransactionRecord) error

	// Remove deletes the record with the given id.
	Remove(txid chainhash.Hash) error
}

// reader implements RecordReader on top of a Backend.
type reader struct {
	src Backend
}

// NewReader returns a RecordReader over the records of b.
func NewReader(b Backend) RecordReader {
	return &reader{src: b}
}

// A compile-time assertion to ensure that reader implements the
// RecordReader interface.
var _ RecordReader = (*reader)(nil)

// ForEachRecord calls f for every record in the store.
func (r *reader) ForEachRecord(f func(rec *TransactionRecord) error) error {
	return r.src.ForEach(f)
}

// FetchRecord returns the record with the given transaction id.
func (r *reader) FetchRecord(
	txid chainhash.Hash) (fn.Option[*TransactionRecord], error) {

	rec, err := r.src.Fetch(txid)
	if err != nil {
		return fn.None[*TransactionRecord](), err
	}
	if rec == nil {
		return fn.None[*TransactionRecord](), nil
	}

	return fn.Some(rec), nil
}

// FetchNote returns the note identified by id.
func (r *reader) FetchNote(id NoteID) (fn.Option[ShieldedNote], error) {
	rec, err := r.src.Fetch(id.TxID)
	if err != nil {
		return fn.None[ShieldedNote](), err
	}
	if rec == nil {
		return fn.None[ShieldedNote](), nil
	}

	return rec.Note(id.Pool, id.Index), nil
}

// UnspentNotes returns the unspent notes of pool held by the transaction.
func (r *reader) UnspentNotes(txid chainhash.Hash,
	pool ShieldedProtocol) ([]ReceivedNote, error) {

	rec, err := r.src.Fetch(txid)
	if err != nil || rec == nil {
		return nil, err
	}

	return rec.UnspentNotes(pool), nil
}

// writer implements RecordWriter on top of a WriteBackend. Every mutation
// works on a copy of the stored record which is then put back, so a backend
// never observes a half-applied change.
type writer struct {
	reader

	sink WriteBackend
	now  func() time.Time
}

// A compile-time assertion to ensure that writer implements the
// RecordWriter interface.
var _ RecordWriter = (*writer)(nil)

// NewWriter returns a RecordWriter over the records of b. Records inserted
// without a received time are stamped with now.
func NewWriter(b WriteBackend, now func() time.Time) RecordWriter {
	return newWriter(b, now)
}

func newWriter(sink WriteBackend, now func() time.Time) *writer {
	return &writer{
		reader: reader{src: sink},
		sink:   sink,
		now:    now,
	}
}

// InsertRecord adds a new record to the store.
func (w *writer) InsertRecord(rec *TransactionRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	existing, err := w.sink.Fetch(rec.TxID)
	if err != nil {
		return err
	}
	if existing != nil {
		return storeError(ErrDuplicateRecord, "record "+
			rec.TxID.String()+" already exists", nil)
	}

	c := rec.Clone()
	if c.Received.IsZero() {
		c.Received = w.now()
	}

	log.Debugf("Inserting record %v (%v): %d sapling, %d orchard, "+
		"%d transparent", c.TxID, c.Status, len(c.SaplingNotes),
		len(c.OrchardNotes), len(c.TransparentOutputs))

	return w.sink.Put(c)
}

// SetStatus updates the confirmation status of a record.
func (w *writer) SetStatus(txid chainhash.Hash,
	status ConfirmationStatus) error {

	return w.modify(txid, func(rec *TransactionRecord) error {
		log.Debugf("Record %v status %v -> %v", txid, rec.Status,
			status)

		rec.Status = status
		return nil
	})
}

// MarkNoteSpent records a mined spend of the note.
func (w *writer) MarkNoteSpent(id NoteID, spender chainhash.Hash) error {
	return w.modify(id.TxID, func(rec *TransactionRecord) error {
		return rec.spendNote(id, spender, false)
	})
}

// MarkNotePendingSpent records an unmined spend of the note.
func (w *writer) MarkNotePendingSpent(id NoteID,
	spender chainhash.Hash) error {

	return w.modify(id.TxID, func(rec *TransactionRecord) error {
		return rec.spendNote(id, spender, true)
	})
}

// MarkOutputSpent records a mined spend of the transparent output.
func (w *writer) MarkOutputSpent(op wire.OutPoint,
	spender chainhash.Hash) error {

	return w.modify(op.Hash, func(rec *TransactionRecord) error {
		return rec.spendOutput(op.Index, spender, false)
	})
}

// RemoveRecord deletes a record.
func (w *writer) RemoveRecord(txid chainhash.Hash) error {
	rec, err := w.sink.Fetch(txid)
	if err != nil {
		return err
	}
	if rec == nil {
		return storeError(ErrRecordNotFound, "record "+txid.String()+
			" not found", nil)
	}

	return w.sink.Remove(txid)
}

// modify applies f to a copy of the record with the given id and stores the
// result.
func (w *writer) modify(txid chainhash.Hash,
	f func(rec *TransactionRecord) error) error {

	rec, err := w.sink.Fetch(txid)
	if err != nil {
		return err
	}
	if rec == nil {
		return storeError(ErrRecordNotFound, "record "+txid.String()+
			" not found", nil)
	}

	c := rec.Clone()
	if err := f(c); err != nil {
		return err
	}

	return w.sink.Put(c)
}
