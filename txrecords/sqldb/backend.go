// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/zecwallet/zecwallet/txrecords"
)

// sqlBackend maps records onto the rows of one SQL transaction. Result sets
// are fully read and closed before the next statement is issued, as a
// transaction owns a single connection.
type sqlBackend struct {
	ctx context.Context
	tx  *sql.Tx
	q   *queries
}

// A compile-time assertion to ensure that sqlBackend implements the
// txrecords.WriteBackend interface.
var _ txrecords.WriteBackend = (*sqlBackend)(nil)

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type noteRow struct {
	txid  chainhash.Hash
	pool  txrecords.ShieldedProtocol
	index uint32
	note  txrecords.ShieldedNote
}

type outputRow struct {
	txid   chainhash.Hash
	output txrecords.TransparentOutput
}

// Fetch returns the record with the given id or nil if it is not stored.
func (b *sqlBackend) Fetch(
	txid chainhash.Hash) (*txrecords.TransactionRecord, error) {

	row := b.tx.QueryRowContext(b.ctx, b.q.selectRecord, txid[:])
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	notes, err := b.queryNotes(b.q.selectNotes, txid[:])
	if err != nil {
		return nil, err
	}

	outputs, err := b.queryOutputs(b.q.selectOutputs, txid[:])
	if err != nil {
		return nil, err
	}

	if err := attachNotes(rec, notes); err != nil {
		return nil, err
	}
	attachOutputs(rec, outputs)

	return rec, nil
}

// ForEach visits every record in transaction id byte order. It loads the
// whole table set up front, with one query per table.
func (b *sqlBackend) ForEach(
	f func(rec *txrecords.TransactionRecord) error) error {

	rows, err := b.tx.QueryContext(b.ctx, b.q.selectRecords)
	if err != nil {
		return dbError("query records", err)
	}

	var records []*txrecords.TransactionRecord
	err = readRows(rows, func(s scanner) error {
		rec, err := scanRecord(s)
		if err != nil {
			return err
		}

		records = append(records, rec)

		return nil
	})
	if err != nil {
		return err
	}

	notes, err := b.queryNotes(b.q.selectAllNotes)
	if err != nil {
		return err
	}

	outputs, err := b.queryOutputs(b.q.selectAllOutputs)
	if err != nil {
		return err
	}

	notesByTx := make(map[chainhash.Hash][]noteRow)
	for _, n := range notes {
		notesByTx[n.txid] = append(notesByTx[n.txid], n)
	}

	outputsByTx := make(map[chainhash.Hash][]outputRow)
	for _, o := range outputs {
		outputsByTx[o.txid] = append(outputsByTx[o.txid], o)
	}

	log.Tracef("Loaded %d records, %d notes, %d outputs", len(records),
		len(notes), len(outputs))

	for _, rec := range records {
		if err := attachNotes(rec, notesByTx[rec.TxID]); err != nil {
			return err
		}
		attachOutputs(rec, outputsByTx[rec.TxID])

		if err := f(rec); err != nil {
			return err
		}
	}

	return nil
}

// Put stores rec, replacing the rows of any record with the same id.
func (b *sqlBackend) Put(rec *txrecords.TransactionRecord) error {
	if err := b.Remove(rec.TxID); err != nil {
		return err
	}

	var receivedAt int64
	if !rec.Received.IsZero() {
		receivedAt = rec.Received.Unix()
	}

	_, err := b.tx.ExecContext(
		b.ctx, b.q.insertRecord, rec.TxID[:],
		int64(rec.Status.State), int64(rec.Status.Height), receivedAt,
	)
	if err != nil {
		return dbError("insert record "+rec.TxID.String(), err)
	}

	for _, pool := range txrecords.ShieldedProtocols {
		for i, note := range rec.Notes(pool) {
			if err := b.insertNote(rec.TxID, pool, i, note); err != nil {
				return err
			}
		}
	}

	for _, out := range rec.TransparentOutputs {
		if err := b.insertOutput(rec.TxID, out); err != nil {
			return err
		}
	}

	return nil
}

// Remove deletes the rows of the record with the given id.
func (b *sqlBackend) Remove(txid chainhash.Hash) error {
	for _, stmt := range []string{
		b.q.deleteNotes, b.q.deleteOutputs, b.q.deleteRecord,
	} {
		_, err := b.tx.ExecContext(b.ctx, stmt, txid[:])
		if err != nil {
			return dbError("delete record "+txid.String(), err)
		}
	}

	return nil
}

func (b *sqlBackend) insertNote(txid chainhash.Hash,
	pool txrecords.ShieldedProtocol, index int,
	note txrecords.ShieldedNote) error {

	value, err := uint64ToInt64(note.Value)
	if err != nil {
		return txrecords.Error{
			Code: txrecords.ErrInput,
			Desc: "note value out of range",
			Err:  err,
		}
	}

	_, err = b.tx.ExecContext(
		b.ctx, b.q.insertNote, txid[:], int64(pool), int64(index),
		value, nullableBytes(note.Recipient), note.Rseed[:],
		nullableHash(note.Spent), nullableHash(note.PendingSpent),
	)
	if err != nil {
		return dbError("insert note", err)
	}

	return nil
}

func (b *sqlBackend) insertOutput(txid chainhash.Hash,
	out txrecords.TransparentOutput) error {

	value, err := uint64ToInt64(out.Value)
	if err != nil {
		return txrecords.Error{
			Code: txrecords.ErrInput,
			Desc: "output value out of range",
			Err:  err,
		}
	}

	_, err = b.tx.ExecContext(
		b.ctx, b.q.insertOutput, txid[:], int64(out.Index), value,
		nullableBytes(out.PkScript), nullableHash(out.Spent),
		nullableHash(out.PendingSpent),
	)
	if err != nil {
		return dbError("insert output", err)
	}

	return nil
}

func (b *sqlBackend) queryNotes(query string,
	args ...interface{}) ([]noteRow, error) {

	rows, err := b.tx.QueryContext(b.ctx, query, args...)
	if err != nil {
		return nil, dbError("query notes", err)
	}

	var notes []noteRow
	err = readRows(rows, func(s scanner) error {
		n, err := scanNote(s)
		if err != nil {
			return err
		}

		notes = append(notes, n)

		return nil
	})

	return notes, err
}

func (b *sqlBackend) queryOutputs(query string,
	args ...interface{}) ([]outputRow, error) {

	rows, err := b.tx.QueryContext(b.ctx, query, args...)
	if err != nil {
		return nil, dbError("query outputs", err)
	}

	var outputs []outputRow
	err = readRows(rows, func(s scanner) error {
		o, err := scanOutput(s)
		if err != nil {
			return err
		}

		outputs = append(outputs, o)

		return nil
	})

	return outputs, err
}

// readRows calls f for every row and closes rows.
func readRows(rows *sql.Rows, f func(s scanner) error) error {
	defer rows.Close()

	for rows.Next() {
		if err := f(rows); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return dbError("read rows", err)
	}

	return nil
}

func scanRecord(s scanner) (*txrecords.TransactionRecord, error) {
	var (
		txid                      []byte
		state, height, receivedAt int64
	)
	err := s.Scan(&txid, &state, &height, &receivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, dbError("scan record", err)
	}

	hash, err := chainhash.NewHash(txid)
	if err != nil {
		return nil, dataError("record id: %w", err)
	}

	st, err := int64ToUint8(state)
	if err != nil {
		return nil, dataError("record %v state: %w", hash, err)
	}

	h, err := int64ToUint32(height)
	if err != nil {
		return nil, dataError("record %v height: %w", hash, err)
	}

	rec := &txrecords.TransactionRecord{
		TxID: *hash,
		Status: txrecords.ConfirmationStatus{
			State:  txrecords.ConfirmationState(st),
			Height: txrecords.BlockHeight(h),
		},
	}
	if receivedAt != 0 {
		rec.Received = time.Unix(receivedAt, 0)
	}

	return rec, nil
}

func scanNote(s scanner) (noteRow, error) {
	var (
		txid, recipient, rseed []byte
		spent, pending         []byte
		pool, index, value     int64
	)
	err := s.Scan(
		&txid, &pool, &index, &value, &recipient, &rseed, &spent,
		&pending,
	)
	if err != nil {
		return noteRow{}, dbError("scan note", err)
	}

	hash, err := chainhash.NewHash(txid)
	if err != nil {
		return noteRow{}, dataError("note txid: %w", err)
	}

	p, err := int64ToUint8(pool)
	if err != nil {
		return noteRow{}, dataError("note %v pool: %w", hash, err)
	}

	idx, err := int64ToUint32(index)
	if err != nil {
		return noteRow{}, dataError("note %v index: %w", hash, err)
	}

	v, err := int64ToUint64(value)
	if err != nil {
		return noteRow{}, dataError("note %v value: %w", hash, err)
	}

	if len(rseed) != 32 {
		return noteRow{}, dataError("note %v rseed has %d bytes", hash,
			len(rseed))
	}

	n := noteRow{
		txid:  *hash,
		pool:  txrecords.ShieldedProtocol(p),
		index: idx,
		note: txrecords.ShieldedNote{
			Value:     v,
			Recipient: recipient,
		},
	}
	copy(n.note.Rseed[:], rseed)

	n.note.Spent, err = scanHash(spent)
	if err != nil {
		return noteRow{}, dataError("note %v spender: %w", hash, err)
	}

	n.note.PendingSpent, err = scanHash(pending)
	if err != nil {
		return noteRow{}, dataError("note %v pending spender: %w", hash,
			err)
	}

	return n, nil
}

func scanOutput(s scanner) (outputRow, error) {
	var (
		txid, script   []byte
		spent, pending []byte
		index, value   int64
	)
	err := s.Scan(&txid, &index, &value, &script, &spent, &pending)
	if err != nil {
		return outputRow{}, dbError("scan output", err)
	}

	hash, err := chainhash.NewHash(txid)
	if err != nil {
		return outputRow{}, dataError("output txid: %w", err)
	}

	idx, err := int64ToUint32(index)
	if err != nil {
		return outputRow{}, dataError("output %v index: %w", hash, err)
	}

	v, err := int64ToUint64(value)
	if err != nil {
		return outputRow{}, dataError("output %v value: %w", hash, err)
	}

	o := outputRow{
		txid: *hash,
		output: txrecords.TransparentOutput{
			Index:    idx,
			Value:    v,
			PkScript: script,
		},
	}

	o.output.Spent, err = scanHash(spent)
	if err != nil {
		return outputRow{}, dataError("output %v spender: %w", hash,
			err)
	}

	o.output.PendingSpent, err = scanHash(pending)
	if err != nil {
		return outputRow{}, dataError("output %v pending spender: %w",
			hash, err)
	}

	return o, nil
}

// attachNotes appends notes, sorted by pool then index, to rec. Note
// indexes must be dense as they are positions in the pool's note list.
func attachNotes(rec *txrecords.TransactionRecord, notes []noteRow) error {
	for _, n := range notes {
		var list *[]txrecords.ShieldedNote
		switch n.pool {
		case txrecords.Sapling:
			list = &rec.SaplingNotes
		case txrecords.Orchard:
			list = &rec.OrchardNotes
		default:
			return dataError("record %v has note in %v", rec.TxID,
				n.pool)
		}

		if uint64(n.index) != uint64(len(*list)) {
			return dataError("record %v %v note %d out of sequence",
				rec.TxID, n.pool, n.index)
		}

		*list = append(*list, n.note)
	}

	return nil
}

func attachOutputs(rec *txrecords.TransactionRecord, outputs []outputRow) {
	for _, o := range outputs {
		rec.TransparentOutputs = append(rec.TransparentOutputs, o.output)
	}
}

// nullableBytes maps an empty slice to SQL NULL.
func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}

	return b
}

// nullableHash maps an absent hash to SQL NULL.
func nullableHash(h fn.Option[chainhash.Hash]) interface{} {
	var v interface{}
	h.WhenSome(func(hash chainhash.Hash) {
		v = hash[:]
	})

	return v
}

func scanHash(b []byte) (fn.Option[chainhash.Hash], error) {
	if b == nil {
		return fn.None[chainhash.Hash](), nil
	}

	hash, err := chainhash.NewHash(b)
	if err != nil {
		return fn.None[chainhash.Hash](), err
	}

	return fn.Some(*hash), nil
}
