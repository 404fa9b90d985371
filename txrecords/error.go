// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode uint8

// These constants are used to identify a specific Error.
const (
	// ErrDatabase indicates an error with the underlying database.  When
	// this error code is set, the Err field of the Error will be
	// set to the underlying error returned from the database.
	ErrDatabase ErrorCode = iota

	// ErrData describes an error where data stored in the record store is
	// incorrect.  This may be due to missing values, values of wrong
	// sizes, or data from different buckets that is inconsistent with
	// itself.  Recovering from an ErrData requires rebuilding all
	// transaction history or manual database surgery.  If the failure was
	// not due to data corruption, this error category indicates a
	// programming error in this package.
	ErrData

	// ErrInput describes an error where the variables passed into this
	// function by the caller are obviously incorrect.  Examples include
	// passing a record without a transaction id or an unknown pool.
	ErrInput

	// ErrRecordNotFound indicates that a transaction record required by a
	// write operation is not present in the store.
	ErrRecordNotFound

	// ErrDuplicateRecord indicates an attempt to insert a transaction
	// record whose id is already stored.
	ErrDuplicateRecord

	// ErrNoteNotFound indicates that a note referenced by a write
	// operation does not exist.
	ErrNoteNotFound

	// ErrOutputNotFound indicates that a transparent output referenced by
	// a write operation does not exist.
	ErrOutputNotFound

	// ErrAlreadySpent indicates an attempt to mark a note or output spent
	// by a different transaction than the one already recorded.
	ErrAlreadySpent
)

var errStrs = [...]string{
	ErrDatabase:        "ErrDatabase",
	ErrData:            "ErrData",
	ErrInput:           "ErrInput",
	ErrRecordNotFound:  "ErrRecordNotFound",
	ErrDuplicateRecord: "ErrDuplicateRecord",
	ErrNoteNotFound:    "ErrNoteNotFound",
	ErrOutputNotFound:  "ErrOutputNotFound",
	ErrAlreadySpent:    "ErrAlreadySpent",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if e < ErrorCode(len(errStrs)) {
		return errStrs[e]
	}
	return fmt.Sprintf("ErrorCode(%d)", e)
}

// Error provides a single type for errors that can happen during record
// store operation.
type Error struct {
	Code ErrorCode // Describes the kind of error
	Desc string    // Human readable description of the issue
	Err  error     // Underlying error, optional
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Desc + ": " + e.Err.Error()
	}
	return e.Desc
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

func storeError(c ErrorCode, desc string, err error) Error {
	return Error{Code: c, Desc: desc, Err: err}
}

// IsError returns whether the error is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.Code == code
}
