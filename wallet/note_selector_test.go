// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zecwallet/zecwallet/txrecords"
)

func testCandidates() []txrecords.ReceivedNote {
	return []txrecords.ReceivedNote{
		{ID: txrecords.NewNoteID(testTxID(2), txrecords.Sapling, 0),
			Note: testNote(30)},
		{ID: txrecords.NewNoteID(testTxID(1), txrecords.Sapling, 1),
			Note: testNote(30)},
		{ID: txrecords.NewNoteID(testTxID(1), txrecords.Sapling, 0),
			Note: testNote(90)},
		{ID: txrecords.NewNoteID(testTxID(3), txrecords.Sapling, 0),
			Note: testNote(10)},
	}
}

// TestLargestFirstNoteSelector checks that notes are arranged by descending
// value with ties in transaction id and index order.
func TestLargestFirstNoteSelector(t *testing.T) {
	t.Parallel()

	arranged, err := NotesLargestFirst.ArrangeNotes(testCandidates())
	require.NoError(t, err)
	require.Equal(t, []txrecords.NoteID{
		txrecords.NewNoteID(testTxID(1), txrecords.Sapling, 0),
		txrecords.NewNoteID(testTxID(1), txrecords.Sapling, 1),
		txrecords.NewNoteID(testTxID(2), txrecords.Sapling, 0),
		txrecords.NewNoteID(testTxID(3), txrecords.Sapling, 0),
	}, noteIDs(arranged))

	arranged, err = NotesLargestFirst.ArrangeNotes(nil)
	require.NoError(t, err)
	require.Empty(t, arranged)
}

// TestRandomNoteSelector checks that shuffling keeps every note.
func TestRandomNoteSelector(t *testing.T) {
	t.Parallel()

	candidates := testCandidates()
	want := noteIDs(candidates)

	arranged, err := NotesRandom.ArrangeNotes(candidates)
	require.NoError(t, err)
	require.ElementsMatch(t, want, noteIDs(arranged))
}

// TestDefaultPoolPolicies checks the default pool priority.
func TestDefaultPoolPolicies(t *testing.T) {
	t.Parallel()

	policies := DefaultPoolPolicies()
	require.Len(t, policies, 2)
	require.Equal(t, txrecords.Sapling, policies[0].Pool)
	require.Equal(t, txrecords.Orchard, policies[1].Pool)

	for _, p := range policies {
		require.Equal(t, NotesLargestFirst, p.Strategy)
	}
}

// TestSpendableNotesTotals checks the helpers of a selection result.
func TestSpendableNotesTotals(t *testing.T) {
	t.Parallel()

	notes := &SpendableNotes{}
	require.Zero(t, notes.Len())

	value, err := notes.TotalValue()
	require.NoError(t, err)
	require.True(t, value.IsZero())

	candidates := testCandidates()
	notes.set(txrecords.Sapling, candidates[:2])
	notes.set(txrecords.Orchard, candidates[2:])
	notes.set(txrecords.ShieldedProtocol(9), candidates)

	require.Equal(t, 4, notes.Len())
	require.Len(t, notes.Notes(txrecords.Orchard), 2)
	require.Nil(t, notes.Notes(txrecords.ShieldedProtocol(9)))

	value, err = notes.TotalValue()
	require.NoError(t, err)
	require.Equal(t, zat(160), value)
}
