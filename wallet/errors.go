// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/zecwallet/zecwallet/pkg/zatoshi"
)

var (
	// ErrUnsupportedAccount is returned when notes are requested for an
	// account other than DefaultAccount.
	ErrUnsupportedAccount = errors.New("unsupported account")

	// ErrInsufficientFunds is matched by every *InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStoreConsistency is returned when a note found while scanning the
	// store cannot be resolved again within the same view. It means the
	// store broke its own invariants and is never retried.
	ErrStoreConsistency = errors.New("store consistency violation")

	// ErrMissingStore is returned when an InputSource is created without
	// a record store.
	ErrMissingStore = errors.New("missing record store")

	// ErrInvalidPoolPolicy is returned when the configured pool order
	// names an unknown pool or names a pool twice.
	ErrInvalidPoolPolicy = errors.New("invalid pool policy")

	// ErrInvalidAddress is returned when a transparent address cannot be
	// decoded.
	ErrInvalidAddress = errors.New("invalid transparent address")
)

// InsufficientFundsError is returned when the eligible notes cannot cover a
// selection target. Shortfall is the exact value still missing after every
// eligible note was used.
type InsufficientFundsError struct {
	Target    zatoshi.Amount
	Shortfall zatoshi.Amount
}

// Error returns a human readable description of the shortfall.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: short %v of target %v",
		e.Shortfall, e.Target)
}

// Unwrap allows errors.Is(err, ErrInsufficientFunds).
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
