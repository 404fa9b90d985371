// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ShieldedNote is a note received in one of the shielded pools. The
// cryptographic parts of the note are carried opaquely; this package only
// tracks the value and spend state.
type ShieldedNote struct {
	// Value is the raw note value in zatoshi. It is not range checked
	// when stored.
	Value uint64

	// Recipient is the raw encoding of the receiving address.
	Recipient []byte

	// Rseed is the note randomness.
	Rseed [32]byte

	// Spent is the id of a mined transaction spending this note.
	Spent fn.Option[chainhash.Hash]

	// PendingSpent is the id of a broadcast, but unmined, transaction
	// spending this note.
	PendingSpent fn.Option[chainhash.Hash]
}

// IsUnspent returns whether no known transaction, mined or pending, spends
// the note.
func (n *ShieldedNote) IsUnspent() bool {
	return n.Spent.IsNone() && n.PendingSpent.IsNone()
}

// Clone returns a deep copy of the note.
func (n ShieldedNote) Clone() ShieldedNote {
	n.Recipient = bytes.Clone(n.Recipient)
	return n
}

// ReceivedNote pairs a shielded note with the id that locates it in the
// store.
type ReceivedNote struct {
	ID   NoteID
	Note ShieldedNote
}

// Pool returns the pool the note belongs to.
func (r ReceivedNote) Pool() ShieldedProtocol {
	return r.ID.Pool
}

// TransparentOutput is a transparent output received by the wallet.
type TransparentOutput struct {
	// Index is the position of the output in its transaction.
	Index uint32

	// Value is the raw output value in zatoshi. It is not range checked
	// when stored.
	Value uint64

	// PkScript is the locking script of the output.
	PkScript []byte

	// Spent is the id of a mined transaction spending this output.
	Spent fn.Option[chainhash.Hash]

	// PendingSpent is the id of a broadcast, but unmined, transaction
	// spending this output.
	PendingSpent fn.Option[chainhash.Hash]
}

// IsUnspent returns whether no known transaction, mined or pending, spends
// the output.
func (o *TransparentOutput) IsUnspent() bool {
	return o.Spent.IsNone() && o.PendingSpent.IsNone()
}

// OutPoint returns the outpoint of the output, given the id of the
// transaction holding it.
func (o *TransparentOutput) OutPoint(txid chainhash.Hash) wire.OutPoint {
	return wire.OutPoint{Hash: txid, Index: o.Index}
}

// Clone returns a deep copy of the output.
func (o TransparentOutput) Clone() TransparentOutput {
	o.PkScript = bytes.Clone(o.PkScript)
	return o
}

// TransactionRecord is everything the wallet knows about one of its
// transactions.
type TransactionRecord struct {
	TxID     chainhash.Hash
	Status   ConfirmationStatus
	Received time.Time

	SaplingNotes       []ShieldedNote
	OrchardNotes       []ShieldedNote
	TransparentOutputs []TransparentOutput
}

// Notes returns the notes of the given pool. The returned slice aliases the
// record.
func (r *TransactionRecord) Notes(pool ShieldedProtocol) []ShieldedNote {
	switch pool {
	case Sapling:
		return r.SaplingNotes
	case Orchard:
		return r.OrchardNotes
	default:
		return nil
	}
}

// Note returns the note at index in the given pool.
func (r *TransactionRecord) Note(pool ShieldedProtocol,
	index uint32) fn.Option[ShieldedNote] {

	notes := r.Notes(pool)
	if uint64(index) >= uint64(len(notes)) {
		return fn.None[ShieldedNote]()
	}

	return fn.Some(notes[index].Clone())
}

// UnspentNotes returns the unspent notes of the given pool paired with their
// ids, in index order.
func (r *TransactionRecord) UnspentNotes(pool ShieldedProtocol) []ReceivedNote {
	var unspent []ReceivedNote
	for i, note := range r.Notes(pool) {
		if !note.IsUnspent() {
			continue
		}

		unspent = append(unspent, ReceivedNote{
			ID:   NewNoteID(r.TxID, pool, uint32(i)),
			Note: note.Clone(),
		})
	}

	return unspent
}

// TransparentOutput returns the output with the given output index.
func (r *TransactionRecord) TransparentOutput(
	index uint32) fn.Option[TransparentOutput] {

	for _, out := range r.TransparentOutputs {
		if out.Index == index {
			return fn.Some(out.Clone())
		}
	}

	return fn.None[TransparentOutput]()
}

// Clone returns a deep copy of the record.
func (r *TransactionRecord) Clone() *TransactionRecord {
	c := *r
	c.SaplingNotes = cloneNotes(r.SaplingNotes)
	c.OrchardNotes = cloneNotes(r.OrchardNotes)

	if r.TransparentOutputs != nil {
		c.TransparentOutputs = make(
			[]TransparentOutput, len(r.TransparentOutputs),
		)
		for i, out := range r.TransparentOutputs {
			c.TransparentOutputs[i] = out.Clone()
		}
	}

	return &c
}

func cloneNotes(notes []ShieldedNote) []ShieldedNote {
	if notes == nil {
		return nil
	}

	c := make([]ShieldedNote, len(notes))
	for i, note := range notes {
		c[i] = note.Clone()
	}

	return c
}

// Validate checks the structural invariants of a record before it is
// stored.
func (r *TransactionRecord) Validate() error {
	if r.TxID == (chainhash.Hash{}) {
		return storeError(ErrInput, "record has no transaction id", nil)
	}

	seen := make(map[uint32]struct{}, len(r.TransparentOutputs))
	for _, out := range r.TransparentOutputs {
		if _, ok := seen[out.Index]; ok {
			return storeError(ErrInput, "duplicate transparent "+
				"output index in record "+r.TxID.String(), nil)
		}
		seen[out.Index] = struct{}{}
	}

	return nil
}

// spendNote records spender as spending the note at id. A pending spend
// only sets the pending marker; a mined spend replaces it.
func (r *TransactionRecord) spendNote(id NoteID, spender chainhash.Hash,
	pending bool) error {

	notes := r.Notes(id.Pool)
	if uint64(id.Index) >= uint64(len(notes)) {
		return storeError(ErrNoteNotFound, "note "+id.String()+
			" not found", nil)
	}

	note := &notes[id.Index]
	if err := checkSpender(note.Spent, spender, id.String()); err != nil {
		return err
	}

	if pending {
		note.PendingSpent = fn.Some(spender)
		return nil
	}

	note.Spent = fn.Some(spender)
	note.PendingSpent = fn.None[chainhash.Hash]()

	return nil
}

// spendOutput records spender as spending the transparent output at index.
func (r *TransactionRecord) spendOutput(index uint32, spender chainhash.Hash,
	pending bool) error {

	for i := range r.TransparentOutputs {
		out := &r.TransparentOutputs[i]
		if out.Index != index {
			continue
		}

		op := out.OutPoint(r.TxID)
		err := checkSpender(out.Spent, spender, op.String())
		if err != nil {
			return err
		}

		if pending {
			out.PendingSpent = fn.Some(spender)
			return nil
		}

		out.Spent = fn.Some(spender)
		out.PendingSpent = fn.None[chainhash.Hash]()

		return nil
	}

	op := wire.OutPoint{Hash: r.TxID, Index: index}

	return storeError(ErrOutputNotFound, "output "+op.String()+
		" not found", nil)
}

func checkSpender(spent fn.Option[chainhash.Hash], spender chainhash.Hash,
	what string) error {

	prev := spent.UnwrapOr(spender)
	if prev != spender {
		return storeError(ErrAlreadySpent, what+" already spent by "+
			prev.String(), nil)
	}

	return nil
}
