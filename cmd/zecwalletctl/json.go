// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
	"github.com/zecwallet/zecwallet/wallet"
)

type noteResult struct {
	TxID      string `json:"txid"`
	Pool      string `json:"pool"`
	Index     uint32 `json:"index"`
	Value     uint64 `json:"value"`
	Recipient string `json:"recipient,omitempty"`
	Spent     bool   `json:"spent"`
}

func newNoteResult(n txrecords.ReceivedNote) noteResult {
	return noteResult{
		TxID:      n.ID.TxID.String(),
		Pool:      n.ID.Pool.String(),
		Index:     n.ID.Index,
		Value:     n.Note.Value,
		Recipient: hex.EncodeToString(n.Note.Recipient),
		Spent:     !n.Note.IsUnspent(),
	}
}

type selectionResult struct {
	Target  uint64       `json:"target"`
	Total   uint64       `json:"total"`
	Sapling []noteResult `json:"sapling"`
	Orchard []noteResult `json:"orchard"`
}

func newSelectionResult(target zatoshi.Amount,
	notes *wallet.SpendableNotes) (*selectionResult, error) {

	total, err := notes.TotalValue()
	if err != nil {
		return nil, err
	}

	result := &selectionResult{
		Target:  target.Uint64(),
		Total:   total.Uint64(),
		Sapling: make([]noteResult, 0, len(notes.Sapling)),
		Orchard: make([]noteResult, 0, len(notes.Orchard)),
	}
	for _, n := range notes.Sapling {
		result.Sapling = append(result.Sapling, newNoteResult(n))
	}
	for _, n := range notes.Orchard {
		result.Orchard = append(result.Orchard, newNoteResult(n))
	}

	return result, nil
}

type balanceResult struct {
	Anchor uint32  `json:"anchor"`
	Value  uint64  `json:"value"`
	Zec    float64 `json:"zec"`
}

type utxoResult struct {
	TxID       string `json:"txid"`
	Vout       uint32 `json:"vout"`
	Value      uint64 `json:"value"`
	Height     uint32 `json:"height"`
	ScriptType string `json:"scripttype"`
	PkScript   string `json:"pkscript"`
}

func newUtxoResult(o wallet.TransparentOutput) utxoResult {
	return utxoResult{
		TxID:       o.OutPoint.Hash.String(),
		Vout:       o.OutPoint.Index,
		Value:      o.Value.Uint64(),
		Height:     uint32(o.Height),
		ScriptType: txscript.GetScriptClass(o.TxOut.PkScript).String(),
		PkScript:   hex.EncodeToString(o.TxOut.PkScript),
	}
}

type recordResult struct {
	TxID               string `json:"txid"`
	Status             string `json:"status"`
	Height             uint32 `json:"height,omitempty"`
	Received           string `json:"received,omitempty"`
	SaplingNotes       int    `json:"saplingnotes"`
	OrchardNotes       int    `json:"orchardnotes"`
	TransparentOutputs int    `json:"transparentoutputs"`
}

func newRecordResult(rec *txrecords.TransactionRecord) recordResult {
	result := recordResult{
		TxID:               rec.TxID.String(),
		Status:             rec.Status.State.String(),
		Height:             uint32(rec.Status.ConfirmedHeight().UnwrapOr(0)),
		SaplingNotes:       len(rec.SaplingNotes),
		OrchardNotes:       len(rec.OrchardNotes),
		TransparentOutputs: len(rec.TransparentOutputs),
	}
	if !rec.Received.IsZero() {
		result.Received = rec.Received.UTC().Format(time.RFC3339)
	}

	return result
}

// printJSON writes v to w as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	b = append(b, '\n')
	_, err = w.Write(b)

	return err
}
