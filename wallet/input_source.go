// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet selects the inputs of shielded wallet spends.
//
// An InputSource answers two questions over a snapshot of the transaction
// records: can a single identified note be produced, and can a set of
// spendable notes covering a target value be assembled under confirmation
// and exclusion constraints. It also looks up the wallet's unspent
// transparent outputs. The InputSource never writes to the record store;
// marking the chosen notes spent is the job of the caller once its
// transaction is committed.
package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
)

// AccountID identifies a wallet account.
type AccountID uint32

// DefaultAccount is the only account notes can be selected for.
const DefaultAccount AccountID = 0

// Config holds the dependencies and policies of an InputSource.
type Config struct {
	// Store is the record store inputs are selected from.
	Store txrecords.RecordViewer

	// Pools is the ordered list of pools notes are selected from. Pools
	// that come first are drained first.
	Pools []PoolPolicy
}

// DefaultConfig returns a config over store using the default pool
// priority.
func DefaultConfig(store txrecords.RecordViewer) Config {
	return Config{
		Store: store,
		Pools: DefaultPoolPolicies(),
	}
}

// InputSource selects spendable inputs from a record store. It holds no
// state between calls and is safe for concurrent use as long as the store
// is.
type InputSource struct {
	store txrecords.RecordViewer
	pools []PoolPolicy
}

// NewInputSource creates an InputSource from cfg.
func NewInputSource(cfg Config) (*InputSource, error) {
	if cfg.Store == nil {
		return nil, ErrMissingStore
	}

	pools, err := validatePoolPolicies(cfg.Pools)
	if err != nil {
		return nil, err
	}

	return &InputSource{
		store: cfg.Store,
		pools: pools,
	}, nil
}

// GetSpendableNote returns the note at index in the given pool of the
// transaction txid. A missing transaction or index yields an empty result,
// not an error.
func (s *InputSource) GetSpendableNote(ctx context.Context,
	txid chainhash.Hash, pool txrecords.ShieldedProtocol,
	index uint32) (fn.Option[txrecords.ReceivedNote], error) {

	id := txrecords.NewNoteID(txid, pool, index)
	result := fn.None[txrecords.ReceivedNote]()

	err := s.store.View(ctx, func(r txrecords.RecordReader) error {
		note, err := r.FetchNote(id)
		if err != nil {
			return err
		}

		note.WhenSome(func(n txrecords.ShieldedNote) {
			result = fn.Some(txrecords.ReceivedNote{ID: id, Note: n})
		})

		return nil
	})
	if err != nil {
		return fn.None[txrecords.ReceivedNote](), err
	}

	return result, nil
}

// SelectSpendableNotes selects unspent notes of account worth at least
// target. Only notes of the pools in sources that were confirmed at or
// before anchor are considered, and notes in exclude are skipped. Pools are
// drained in the configured order, each with its own strategy, with one
// running target across all of them.
//
// If the eligible notes cannot cover target, an *InsufficientFundsError
// reporting the exact shortfall is returned.
func (s *InputSource) SelectSpendableNotes(ctx context.Context,
	account AccountID, target zatoshi.Amount,
	sources []txrecords.ShieldedProtocol, anchor txrecords.BlockHeight,
	exclude fn.Set[txrecords.NoteID]) (*SpendableNotes, error) {

	if account != DefaultAccount {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAccount, account)
	}

	pools := s.permittedPools(sources)
	selection := &SpendableNotes{}

	err := s.store.View(ctx, func(r txrecords.RecordReader) error {
		candidates, err := collectCandidates(r, pools, anchor, exclude)
		if err != nil {
			return err
		}

		resolve := resolver(r)
		remaining := target

		for _, policy := range pools {
			arranged, err := policy.Strategy.ArrangeNotes(
				candidates[policy.Pool],
			)
			if err != nil {
				return fmt.Errorf("arrange %v notes: %w",
					policy.Pool, err)
			}

			var selected []txrecords.ReceivedNote
			selected, remaining, err = fillTarget(
				arranged, remaining, resolve,
			)
			if err != nil {
				return err
			}

			selection.set(policy.Pool, selected)

			log.Debugf("Selected %d of %d %v %s, %v remaining",
				len(selected), len(arranged), policy.Pool,
				pickNoun(len(arranged), "note", "notes"),
				remaining)
		}

		if !remaining.IsZero() {
			return &InsufficientFundsError{
				Target:    target,
				Shortfall: remaining,
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Tracef("Note selection for target %v: %v", target,
		spewClosure(selection))

	return selection, nil
}

// SpendableValue returns the combined value of the notes
// SelectSpendableNotes could choose from with the same arguments.
func (s *InputSource) SpendableValue(ctx context.Context, account AccountID,
	sources []txrecords.ShieldedProtocol, anchor txrecords.BlockHeight,
	exclude fn.Set[txrecords.NoteID]) (zatoshi.Amount, error) {

	if account != DefaultAccount {
		return zatoshi.Zero, fmt.Errorf("%w: %d", ErrUnsupportedAccount,
			account)
	}

	pools := s.permittedPools(sources)
	total := zatoshi.Zero

	err := s.store.View(ctx, func(r txrecords.RecordReader) error {
		candidates, err := collectCandidates(r, pools, anchor, exclude)
		if err != nil {
			return err
		}

		for _, policy := range pools {
			for _, c := range candidates[policy.Pool] {
				value, err := zatoshi.FromUint64(c.Note.Value)
				if err != nil {
					return fmt.Errorf("note %v: %w", c.ID,
						err)
				}

				total, err = total.Add(value)
				if err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return zatoshi.Zero, err
	}

	return total, nil
}

// permittedPools returns the configured policies whose pool is in sources,
// keeping the configured order.
func (s *InputSource) permittedPools(
	sources []txrecords.ShieldedProtocol) []PoolPolicy {

	permitted := fn.NewSet(sources...)

	pools := make([]PoolPolicy, 0, len(s.pools))
	for _, policy := range s.pools {
		if permitted.Contains(policy.Pool) {
			pools = append(pools, policy)
		}
	}

	return pools
}

// collectCandidates returns, per pool, the unspent notes of every record
// confirmed at or before anchor that are not excluded. Records confirmed
// after anchor, unconfirmed or conflicted are skipped entirely.
func collectCandidates(r txrecords.RecordReader, pools []PoolPolicy,
	anchor txrecords.BlockHeight, exclude fn.Set[txrecords.NoteID]) (
	map[txrecords.ShieldedProtocol][]txrecords.ReceivedNote, error) {

	candidates := make(
		map[txrecords.ShieldedProtocol][]txrecords.ReceivedNote,
		len(pools),
	)

	err := r.ForEachRecord(func(rec *txrecords.TransactionRecord) error {
		if !rec.Status.IsConfirmedBeforeOrAt(anchor) {
			return nil
		}

		for _, policy := range pools {
			for _, n := range rec.UnspentNotes(policy.Pool) {
				if exclude.Contains(n.ID) {
					continue
				}

				candidates[policy.Pool] = append(
					candidates[policy.Pool], n,
				)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// resolver returns a function that looks a note up again by its id,
// failing with ErrStoreConsistency if it is gone.
func resolver(r txrecords.RecordReader) func(
	txrecords.NoteID) (txrecords.ShieldedNote, error) {

	return func(id txrecords.NoteID) (txrecords.ShieldedNote, error) {
		note, err := r.FetchNote(id)
		if err != nil {
			return txrecords.ShieldedNote{}, err
		}

		if note.IsNone() {
			return txrecords.ShieldedNote{}, fmt.Errorf("%w: note "+
				"%v not found", ErrStoreConsistency, id)
		}

		return note.UnwrapOr(txrecords.ShieldedNote{}), nil
	}
}
