// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// BlockHeight is a height in the block chain.
type BlockHeight uint32

// ShieldedProtocol identifies one of the shielded value pools.
type ShieldedProtocol uint8

const (
	// Sapling is the Sapling shielded pool.
	Sapling ShieldedProtocol = iota

	// Orchard is the Orchard shielded pool.
	Orchard
)

// ShieldedProtocols lists every known shielded pool, in their default
// selection priority.
var ShieldedProtocols = []ShieldedProtocol{Sapling, Orchard}

// IsValid returns whether p names a known pool.
func (p ShieldedProtocol) IsValid() bool {
	return p == Sapling || p == Orchard
}

// String returns the lower case name of the pool.
func (p ShieldedProtocol) String() string {
	switch p {
	case Sapling:
		return "sapling"
	case Orchard:
		return "orchard"
	default:
		return fmt.Sprintf("pool(%d)", uint8(p))
	}
}

// ParseShieldedProtocol parses a pool name as produced by String.
func ParseShieldedProtocol(s string) (ShieldedProtocol, error) {
	switch strings.ToLower(s) {
	case "sapling":
		return Sapling, nil
	case "orchard":
		return Orchard, nil
	default:
		return 0, storeError(ErrInput, "unknown shielded pool "+
			strconv.Quote(s), nil)
	}
}

// NoteID uniquely identifies a shielded note by the transaction that created
// it, its pool and its position within that pool's notes of the
// transaction.
type NoteID struct {
	TxID  chainhash.Hash
	Pool  ShieldedProtocol
	Index uint32
}

// NewNoteID returns the NoteID for the given coordinates.
func NewNoteID(txid chainhash.Hash, pool ShieldedProtocol,
	index uint32) NoteID {

	return NoteID{TxID: txid, Pool: pool, Index: index}
}

// String returns the id in txid:pool:index form.
func (id NoteID) String() string {
	return fmt.Sprintf("%v:%v:%d", id.TxID, id.Pool, id.Index)
}

// ParseNoteID parses a NoteID in the txid:pool:index form produced by
// String.
func ParseNoteID(s string) (NoteID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return NoteID{}, storeError(ErrInput, "note id "+
			strconv.Quote(s)+" is not txid:pool:index", nil)
	}

	txid, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return NoteID{}, storeError(ErrInput, "invalid note txid", err)
	}

	pool, err := ParseShieldedProtocol(parts[1])
	if err != nil {
		return NoteID{}, err
	}

	index, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return NoteID{}, storeError(ErrInput, "invalid note index", err)
	}

	return NewNoteID(*txid, pool, uint32(index)), nil
}

// ConfirmationState enumerates the states a transaction can be in with
// respect to the chain.
type ConfirmationState uint8

const (
	// StateUnconfirmed marks a transaction that has not been mined.
	StateUnconfirmed ConfirmationState = iota

	// StateConfirmed marks a transaction mined at a known height.
	StateConfirmed

	// StateConflicted marks a transaction that conflicts with a mined
	// transaction and can never confirm.
	StateConflicted
)

// String returns a human readable state name.
func (s ConfirmationState) String() string {
	switch s {
	case StateUnconfirmed:
		return "unconfirmed"
	case StateConfirmed:
		return "confirmed"
	case StateConflicted:
		return "conflicted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ConfirmationStatus is the confirmation status of a transaction record.
// Height is only meaningful in the StateConfirmed state.
type ConfirmationStatus struct {
	State  ConfirmationState
	Height BlockHeight
}

// Unconfirmed returns the status of a transaction that is not yet mined.
func Unconfirmed() ConfirmationStatus {
	return ConfirmationStatus{State: StateUnconfirmed}
}

// ConfirmedAt returns the status of a transaction mined at height.
func ConfirmedAt(height BlockHeight) ConfirmationStatus {
	return ConfirmationStatus{State: StateConfirmed, Height: height}
}

// Conflicted returns the status of a transaction that lost a double spend.
func Conflicted() ConfirmationStatus {
	return ConfirmationStatus{State: StateConflicted}
}

// IsConfirmed returns whether the transaction is mined.
func (s ConfirmationStatus) IsConfirmed() bool {
	return s.State == StateConfirmed
}

// IsConfirmedBeforeOrAt returns whether the transaction was mined at a
// height less than or equal to height.
func (s ConfirmationStatus) IsConfirmedBeforeOrAt(height BlockHeight) bool {
	return s.State == StateConfirmed && s.Height <= height
}

// ConfirmedHeight returns the mining height, if the transaction is mined.
func (s ConfirmationStatus) ConfirmedHeight() fn.Option[BlockHeight] {
	if s.State != StateConfirmed {
		return fn.None[BlockHeight]()
	}

	return fn.Some(s.Height)
}

// String returns the status in human readable form.
func (s ConfirmationStatus) String() string {
	if s.State == StateConfirmed {
		return fmt.Sprintf("confirmed at %d", s.Height)
	}

	return s.State.String()
}
