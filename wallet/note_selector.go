// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
)

// NoteSelectionStrategy decides the order in which the eligible notes of a
// pool are spent. Selection walks the arranged notes from the front until
// the target is covered, so the strategy fully determines which notes are
// chosen.
type NoteSelectionStrategy interface {
	// ArrangeNotes takes the eligible notes of one pool and returns them
	// in the order they should be spent. It may reorder the given slice
	// in place.
	ArrangeNotes(eligible []txrecords.ReceivedNote) (
		[]txrecords.ReceivedNote, error)
}

var (
	// NotesLargestFirst always picks the largest available note next. It
	// minimizes the number of notes consumed by a spend.
	NotesLargestFirst NoteSelectionStrategy = &LargestFirstNoteSelector{}

	// NotesRandom picks the next note at random, so that spends do not
	// reveal a preference for particular denominations.
	NotesRandom NoteSelectionStrategy = &RandomNoteSelector{}
)

// sortByValue sorts notes by ascending value. Notes of equal value are
// ordered by descending transaction id bytes, then descending index, so
// that the reversed order is fully deterministic.
type sortByValue []txrecords.ReceivedNote

func (s sortByValue) Len() int { return len(s) }
func (s sortByValue) Less(i, j int) bool {
	if s[i].Note.Value != s[j].Note.Value {
		return s[i].Note.Value < s[j].Note.Value
	}

	a, b := s[i].ID, s[j].ID
	if c := bytes.Compare(a.TxID[:], b.TxID[:]); c != 0 {
		return c > 0
	}

	return a.Index > b.Index
}
func (s sortByValue) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// LargestFirstNoteSelector is an implementation of the NoteSelectionStrategy
// that always selects the largest notes first. Equal notes are taken in
// ascending transaction id and index order.
type LargestFirstNoteSelector struct{}

// ArrangeNotes sorts the notes by descending value.
func (*LargestFirstNoteSelector) ArrangeNotes(
	eligible []txrecords.ReceivedNote) ([]txrecords.ReceivedNote, error) {

	sort.Sort(sort.Reverse(sortByValue(eligible)))

	return eligible, nil
}

// RandomNoteSelector is an implementation of the NoteSelectionStrategy that
// selects notes at random.
type RandomNoteSelector struct{}

// ArrangeNotes shuffles the notes.
func (*RandomNoteSelector) ArrangeNotes(
	eligible []txrecords.ReceivedNote) ([]txrecords.ReceivedNote, error) {

	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	return eligible, nil
}

// PoolPolicy pairs a shielded pool with the strategy used to spend its
// notes. An ordered list of policies defines the pool priority of a
// selection.
type PoolPolicy struct {
	Pool     txrecords.ShieldedProtocol
	Strategy NoteSelectionStrategy
}

// DefaultPoolPolicies returns the default pool priority: Sapling notes are
// spent before Orchard notes, both largest first.
func DefaultPoolPolicies() []PoolPolicy {
	policies := make([]PoolPolicy, 0, len(txrecords.ShieldedProtocols))
	for _, pool := range txrecords.ShieldedProtocols {
		policies = append(policies, PoolPolicy{
			Pool:     pool,
			Strategy: NotesLargestFirst,
		})
	}

	return policies
}

// validatePoolPolicies checks that every policy names a distinct known pool.
// Policies without a strategy get NotesLargestFirst.
func validatePoolPolicies(policies []PoolPolicy) ([]PoolPolicy, error) {
	seen := make(map[txrecords.ShieldedProtocol]struct{}, len(policies))
	valid := make([]PoolPolicy, 0, len(policies))

	for _, p := range policies {
		if !p.Pool.IsValid() {
			return nil, fmt.Errorf("%w: unknown pool %v",
				ErrInvalidPoolPolicy, p.Pool)
		}

		if _, ok := seen[p.Pool]; ok {
			return nil, fmt.Errorf("%w: pool %v listed twice",
				ErrInvalidPoolPolicy, p.Pool)
		}
		seen[p.Pool] = struct{}{}

		if p.Strategy == nil {
			p.Strategy = NotesLargestFirst
		}
		valid = append(valid, p)
	}

	return valid, nil
}

// fillTarget walks the arranged candidates while remaining is non-zero,
// selecting each one and subtracting its value from remaining. Every
// candidate is resolved again through resolve before it is counted. A note
// worth more than what remains covers the target and its surplus is
// dropped. The unmet part of the target is returned.
func fillTarget(candidates []txrecords.ReceivedNote, remaining zatoshi.Amount,
	resolve func(txrecords.NoteID) (txrecords.ShieldedNote, error)) (
	[]txrecords.ReceivedNote, zatoshi.Amount, error) {

	var selected []txrecords.ReceivedNote
	for _, candidate := range candidates {
		if remaining.IsZero() {
			break
		}

		note, err := resolve(candidate.ID)
		if err != nil {
			return nil, zatoshi.Zero, err
		}

		value, err := zatoshi.FromUint64(note.Value)
		if err != nil {
			return nil, zatoshi.Zero, fmt.Errorf("note %v: %w",
				candidate.ID, err)
		}

		selected = append(selected, txrecords.ReceivedNote{
			ID:   candidate.ID,
			Note: note,
		})

		remaining, err = remaining.Sub(value)
		switch {
		case errors.Is(err, zatoshi.ErrAmountUnderflow):
			remaining = zatoshi.Zero

		case err != nil:
			return nil, zatoshi.Zero, err
		}
	}

	return selected, remaining, nil
}
