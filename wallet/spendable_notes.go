// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
)

// SpendableNotes is the result of a note selection, grouped by pool. Either
// group may be empty.
type SpendableNotes struct {
	Sapling []txrecords.ReceivedNote
	Orchard []txrecords.ReceivedNote
}

// Notes returns the selected notes of pool.
func (s *SpendableNotes) Notes(
	pool txrecords.ShieldedProtocol) []txrecords.ReceivedNote {

	switch pool {
	case txrecords.Sapling:
		return s.Sapling
	case txrecords.Orchard:
		return s.Orchard
	default:
		return nil
	}
}

// Len returns the number of selected notes across all pools.
func (s *SpendableNotes) Len() int {
	return len(s.Sapling) + len(s.Orchard)
}

// TotalValue returns the combined value of the selected notes.
func (s *SpendableNotes) TotalValue() (zatoshi.Amount, error) {
	total := zatoshi.Zero
	for _, pool := range txrecords.ShieldedProtocols {
		for _, n := range s.Notes(pool) {
			value, err := zatoshi.FromUint64(n.Note.Value)
			if err != nil {
				return zatoshi.Zero, fmt.Errorf("note %v: %w",
					n.ID, err)
			}

			total, err = total.Add(value)
			if err != nil {
				return zatoshi.Zero, err
			}
		}
	}

	return total, nil
}

// set stores the selected notes of pool.
func (s *SpendableNotes) set(pool txrecords.ShieldedProtocol,
	notes []txrecords.ReceivedNote) {

	switch pool {
	case txrecords.Sapling:
		s.Sapling = notes
	case txrecords.Orchard:
		s.Orchard = notes
	}
}
