// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
)

// TransparentOutput is an unspent transparent output of the wallet together
// with the height of the block that confirmed it.
type TransparentOutput struct {
	OutPoint wire.OutPoint
	TxOut    wire.TxOut
	Value    zatoshi.Amount
	Height   txrecords.BlockHeight
}

// newTransparentOutput converts a stored output of the record txid
// confirmed at height.
func newTransparentOutput(txid chainhash.Hash,
	out *txrecords.TransparentOutput,
	height txrecords.BlockHeight) (TransparentOutput, error) {

	op := out.OutPoint(txid)

	value, err := zatoshi.FromUint64(out.Value)
	if err != nil {
		return TransparentOutput{}, fmt.Errorf("output %v: %w", op, err)
	}

	return TransparentOutput{
		OutPoint: op,
		TxOut: wire.TxOut{
			Value:    value.Int64(),
			PkScript: append([]byte(nil), out.PkScript...),
		},
		Value:  value,
		Height: height,
	}, nil
}

// GetUnspentTransparentOutput returns the unspent output at outpoint if its
// transaction is confirmed. Outputs of unconfirmed or conflicted
// transactions are not returned even when the outpoint matches.
func (s *InputSource) GetUnspentTransparentOutput(ctx context.Context,
	outpoint wire.OutPoint) (fn.Option[TransparentOutput], error) {

	result := fn.None[TransparentOutput]()

	err := s.store.View(ctx, func(r txrecords.RecordReader) error {
		recOpt, err := r.FetchRecord(outpoint.Hash)
		if err != nil {
			return err
		}

		rec := recOpt.UnwrapOr(nil)
		if rec == nil {
			return nil
		}

		height := rec.Status.ConfirmedHeight()
		if height.IsNone() {
			return nil
		}

		outOpt := rec.TransparentOutput(outpoint.Index)
		if outOpt.IsNone() {
			return nil
		}

		out := outOpt.UnwrapOr(txrecords.TransparentOutput{})
		if !out.IsUnspent() {
			return nil
		}

		output, err := newTransparentOutput(
			rec.TxID, &out, height.UnwrapOr(0),
		)
		if err != nil {
			return err
		}

		result = fn.Some(output)

		return nil
	})
	if err != nil {
		return fn.None[TransparentOutput](), err
	}

	return result, nil
}

// GetUnspentTransparentOutputs returns every unspent output of transactions
// confirmed at or below maxHeight whose outpoint is not in exclude. The
// address is currently not used to filter outputs: the outputs of every
// address are returned. The first output whose value is out of range fails
// the whole call.
func (s *InputSource) GetUnspentTransparentOutputs(ctx context.Context,
	addr TransparentAddress, maxHeight txrecords.BlockHeight,
	exclude fn.Set[wire.OutPoint]) ([]TransparentOutput, error) {

	log.Debugf("Listing unspent transparent outputs up to height %d, "+
		"address %v not applied", maxHeight, addr)

	var outputs []TransparentOutput

	err := s.store.View(ctx, func(r txrecords.RecordReader) error {
		return r.ForEachRecord(func(rec *txrecords.TransactionRecord) error {
			if !rec.Status.IsConfirmedBeforeOrAt(maxHeight) {
				return nil
			}

			for i := range rec.TransparentOutputs {
				out := &rec.TransparentOutputs[i]
				if !out.IsUnspent() {
					continue
				}
				if exclude.Contains(out.OutPoint(rec.TxID)) {
					continue
				}

				output, err := newTransparentOutput(
					rec.TxID, out, rec.Status.Height,
				)
				if err != nil {
					return err
				}

				outputs = append(outputs, output)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return outputs, nil
}
