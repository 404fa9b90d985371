package sqldb

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrCastingOverflow is returned when a value cannot be safely
	// cast to the desired type.
	ErrCastingOverflow = errors.New("casting overflow")
)

// uint64ToInt64 safely casts an uint64 to an int64, returning an error
// if the value is out of range.
func uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("could not cast %d to int64: %w", v,
			ErrCastingOverflow)
	}

	return int64(v), nil
}

// int64ToUint64 safely casts an int64 to an uint64, returning an error
// if the value is negative.
func int64ToUint64(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("could not cast %d to uint64: %w", v,
			ErrCastingOverflow)
	}

	return uint64(v), nil
}

// int64ToUint32 safely casts an int64 to an uint32, returning an error
// if the value is out of range.
func int64ToUint32(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("could not cast %d to uint32: %w", v,
			ErrCastingOverflow)
	}

	return uint32(v), nil
}

// int64ToUint8 safely casts an int64 to an uint8, returning an error
// if the value is out of range.
func int64ToUint8(v int64) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("could not cast %d to uint8: %w", v,
			ErrCastingOverflow)
	}

	return uint8(v), nil
}
