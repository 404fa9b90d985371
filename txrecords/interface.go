// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// RecordReader is a read-only, consistent view of the transaction records.
// A RecordReader is only valid inside the View call that produced it.
type RecordReader interface {
	// ForEachRecord calls f for every record in the store. Iteration
	// stops at the first error returned by f, which is passed back to
	// the caller. Records must not be modified by f.
	ForEachRecord(f func(rec *TransactionRecord) error) error

	// FetchRecord returns the record with the given transaction id.
	FetchRecord(txid chainhash.Hash) (fn.Option[*TransactionRecord], error)

	// FetchNote returns the note identified by id, spent or not.
	FetchNote(id NoteID) (fn.Option[ShieldedNote], error)

	// UnspentNotes returns the unspent notes of the given pool held by
	// the transaction, paired with their ids.
	UnspentNotes(txid chainhash.Hash,
		pool ShieldedProtocol) ([]ReceivedNote, error)
}

// RecordWriter extends RecordReader with the mutations performed by the
// layers that ingest chain data and track spends.
type RecordWriter interface {
	RecordReader

	// InsertRecord adds a new record. Inserting a record whose id is
	// already stored fails with ErrDuplicateRecord.
	InsertRecord(rec *TransactionRecord) error

	// SetStatus updates the confirmation status of a record.
	SetStatus(txid chainhash.Hash, status ConfirmationStatus) error

	// MarkNoteSpent records a mined spend of the note.
	MarkNoteSpent(id NoteID, spender chainhash.Hash) error

	// MarkNotePendingSpent records an unmined spend of the note.
	MarkNotePendingSpent(id NoteID, spender chainhash.Hash) error

	// MarkOutputSpent records a mined spend of the transparent output.
	MarkOutputSpent(op wire.OutPoint, spender chainhash.Hash) error

	// RemoveRecord deletes a record and everything it holds.
	RemoveRecord(txid chainhash.Hash) error
}

// RecordViewer gives access to consistent read snapshots of the records.
type RecordViewer interface {
	// View calls f with a reader over a snapshot that does not change
	// for the duration of the call.
	View(ctx context.Context, f func(r RecordReader) error) error
}

// RecordStore is a transaction record store that can be both read and
// written.
type RecordStore interface {
	RecordViewer

	// Update calls f with a writer. All writes made by f are applied
	// atomically when f returns nil and discarded otherwise.
	Update(ctx context.Context, f func(w RecordWriter) error) error
}
