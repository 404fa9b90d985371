// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zatoshi provides a bounded, non-negative monetary amount type.
//
// All arithmetic on Amount is checked: operations that would leave the valid
// range return an error instead of wrapping or going negative.
package zatoshi

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// ZatoshiPerZec is the number of zatoshi in one whole coin.
	ZatoshiPerZec = btcutil.SatoshiPerBitcoin

	// MaxMoney is the largest value an Amount can hold. It matches the
	// total money supply cap.
	MaxMoney = btcutil.MaxSatoshi
)

var (
	// ErrAmountRange is returned when a raw value does not fit into the
	// [0, MaxMoney] range.
	ErrAmountRange = errors.New("amount out of range")

	// ErrAmountUnderflow is returned when a subtraction would produce a
	// negative amount.
	ErrAmountUnderflow = errors.New("amount underflow")

	// Zero is the zero amount.
	Zero = Amount{}
)

// Amount is a monetary value in zatoshi that is guaranteed to lie within
// [0, MaxMoney]. The zero value is a valid zero amount.
type Amount struct {
	amt btcutil.Amount
}

// FromUint64 converts a raw value into an Amount.
func FromUint64(v uint64) (Amount, error) {
	if v > uint64(MaxMoney) {
		return Amount{}, fmt.Errorf("%w: %d exceeds %d", ErrAmountRange,
			v, int64(MaxMoney))
	}

	return Amount{amt: btcutil.Amount(v)}, nil
}

// FromInt64 converts a signed raw value, as carried by wire.TxOut, into an
// Amount.
func FromInt64(v int64) (Amount, error) {
	if v < 0 {
		return Amount{}, fmt.Errorf("%w: %d is negative", ErrAmountRange,
			v)
	}

	return FromUint64(uint64(v))
}

// MustFromUint64 is like FromUint64 but panics on an out of range value. It
// is meant for constants and tests.
func MustFromUint64(v uint64) Amount {
	a, err := FromUint64(v)
	if err != nil {
		panic(err)
	}

	return a
}

// Uint64 returns the amount in zatoshi.
func (a Amount) Uint64() uint64 {
	return uint64(a.amt)
}

// Int64 returns the amount in zatoshi as a signed value, the form used by
// wire.TxOut.
func (a Amount) Int64() int64 {
	return int64(a.amt)
}

// ToBtcutil returns the amount as a btcutil.Amount.
func (a Amount) ToBtcutil() btcutil.Amount {
	return a.amt
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.amt == 0
}

// Cmp compares two amounts and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.amt < b.amt:
		return -1
	case a.amt > b.amt:
		return 1
	default:
		return 0
	}
}

// Add returns a+b, failing with ErrAmountRange if the result exceeds
// MaxMoney.
func (a Amount) Add(b Amount) (Amount, error) {
	// Both operands are bounded by MaxMoney so the int64 sum cannot
	// overflow.
	sum := a.amt + b.amt
	if sum > MaxMoney {
		return Amount{}, fmt.Errorf("%w: %d + %d exceeds %d",
			ErrAmountRange, int64(a.amt), int64(b.amt),
			int64(MaxMoney))
	}

	return Amount{amt: sum}, nil
}

// Sub returns a-b, failing with ErrAmountUnderflow if b is larger than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b.amt > a.amt {
		return Amount{}, fmt.Errorf("%w: %d - %d", ErrAmountUnderflow,
			int64(a.amt), int64(b.amt))
	}

	return Amount{amt: a.amt - b.amt}, nil
}

// Sum adds all the given amounts with checked arithmetic.
func Sum(amounts ...Amount) (Amount, error) {
	total := Zero
	for _, amt := range amounts {
		var err error
		total, err = total.Add(amt)
		if err != nil {
			return Amount{}, err
		}
	}

	return total, nil
}

// String returns the amount formatted in zatoshi.
func (a Amount) String() string {
	return fmt.Sprintf("%d zat", int64(a.amt))
}

// ToZec returns the amount in whole coins as a float. It is only meant for
// display.
func (a Amount) ToZec() float64 {
	return a.amt.ToBTC()
}
