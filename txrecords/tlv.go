// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrecords

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/tlv"
)

const (
	typeRecordState       tlv.Type = 1
	typeRecordHeight      tlv.Type = 2
	typeRecordReceived    tlv.Type = 3
	typeRecordSapling     tlv.Type = 4
	typeRecordOrchard     tlv.Type = 5
	typeRecordTransparent tlv.Type = 6

	typeNoteValue        tlv.Type = 1
	typeNoteRecipient    tlv.Type = 2
	typeNoteRseed        tlv.Type = 3
	typeNoteSpent        tlv.Type = 4
	typeNotePendingSpent tlv.Type = 5

	typeOutputIndex        tlv.Type = 1
	typeOutputValue        tlv.Type = 2
	typeOutputScript       tlv.Type = 3
	typeOutputSpent        tlv.Type = 4
	typeOutputPendingSpent tlv.Type = 5
)

// encodeRecord serializes everything but the transaction id of rec as a TLV
// stream. The id is the key the record is stored under.
func encodeRecord(rec *TransactionRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("cannot encode nil record")
	}

	var (
		state    = uint8(rec.Status.State)
		height   = uint32(rec.Status.Height)
		received uint64
	)
	if !rec.Received.IsZero() {
		received = uint64(rec.Received.Unix())
	}

	tlvRecords := []tlv.Record{
		tlv.MakePrimitiveRecord(typeRecordState, &state),
		tlv.MakePrimitiveRecord(typeRecordHeight, &height),
		tlv.MakePrimitiveRecord(typeRecordReceived, &received),
	}

	if len(rec.SaplingNotes) > 0 {
		tlvRecords = append(tlvRecords, notesRecord(
			typeRecordSapling, &rec.SaplingNotes,
		))
	}

	if len(rec.OrchardNotes) > 0 {
		tlvRecords = append(tlvRecords, notesRecord(
			typeRecordOrchard, &rec.OrchardNotes,
		))
	}

	if len(rec.TransparentOutputs) > 0 {
		tlvRecords = append(tlvRecords, outputsRecord(
			&rec.TransparentOutputs,
		))
	}

	tlvStream, err := tlv.NewStream(tlvRecords...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tlvStream.Encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeRecord parses a record stored under txid from its TLV encoding.
func decodeRecord(txid chainhash.Hash,
	tlvData []byte) (*TransactionRecord, error) {

	var (
		state    uint8
		height   uint32
		received uint64
		rec      = &TransactionRecord{TxID: txid}
	)

	tlvStream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(typeRecordState, &state),
		tlv.MakePrimitiveRecord(typeRecordHeight, &height),
		tlv.MakePrimitiveRecord(typeRecordReceived, &received),
		notesRecord(typeRecordSapling, &rec.SaplingNotes),
		notesRecord(typeRecordOrchard, &rec.OrchardNotes),
		outputsRecord(&rec.TransparentOutputs),
	)
	if err != nil {
		return nil, err
	}

	_, err = tlvStream.DecodeWithParsedTypes(bytes.NewReader(tlvData))
	if err != nil {
		return nil, err
	}

	if ConfirmationState(state) > StateConflicted {
		return nil, fmt.Errorf("unknown confirmation state %d", state)
	}

	rec.Status = ConfirmationStatus{
		State:  ConfirmationState(state),
		Height: BlockHeight(height),
	}
	if received != 0 {
		rec.Received = time.Unix(int64(received), 0)
	}

	return rec, nil
}

func notesRecord(typ tlv.Type, notes *[]ShieldedNote) tlv.Record {
	return tlv.MakeDynamicRecord(
		typ, notes, func() uint64 {
			return recordSize(notesEncoder, notes)
		}, notesEncoder, notesDecoder,
	)
}

func outputsRecord(outputs *[]TransparentOutput) tlv.Record {
	return tlv.MakeDynamicRecord(
		typeRecordTransparent, outputs, func() uint64 {
			return recordSize(outputsEncoder, outputs)
		}, outputsEncoder, outputsDecoder,
	)
}

// notesEncoder is a custom TLV encoder for a slice of shielded notes.
func notesEncoder(w io.Writer, val interface{}, buf *[8]byte) error {
	v, ok := val.(*[]ShieldedNote)
	if !ok {
		return tlv.NewTypeForEncodingErr(val, "[]ShieldedNote")
	}

	for _, note := range *v {
		var (
			value     = note.Value
			recipient = note.Recipient
			rseed     = note.Rseed
		)

		tlvRecords := []tlv.Record{
			tlv.MakePrimitiveRecord(typeNoteValue, &value),
		}

		if len(recipient) > 0 {
			tlvRecords = append(tlvRecords, tlv.MakePrimitiveRecord(
				typeNoteRecipient, &recipient,
			))
		}

		tlvRecords = append(tlvRecords, tlv.MakePrimitiveRecord(
			typeNoteRseed, &rseed,
		))
		tlvRecords = appendHashRecord(
			tlvRecords, typeNoteSpent, note.Spent,
		)
		tlvRecords = appendHashRecord(
			tlvRecords, typeNotePendingSpent, note.PendingSpent,
		)

		if err := writeNested(w, tlvRecords, buf); err != nil {
			return err
		}
	}

	return nil
}

// notesDecoder is a custom TLV decoder for a slice of shielded notes.
func notesDecoder(r io.Reader, val interface{}, buf *[8]byte, l uint64) error {
	v, ok := val.(*[]ShieldedNote)
	if !ok {
		return tlv.NewTypeForDecodingErr(val, "[]ShieldedNote", l, l)
	}

	var notes []ShieldedNote
	err := readNested(r, l, buf, func(inner io.Reader) error {
		var (
			note         ShieldedNote
			recipient    []byte
			spent        [32]byte
			pendingSpent [32]byte
		)

		tlvStream, err := tlv.NewStream(
			tlv.MakePrimitiveRecord(typeNoteValue, &note.Value),
			tlv.MakePrimitiveRecord(typeNoteRecipient, &recipient),
			tlv.MakePrimitiveRecord(typeNoteRseed, &note.Rseed),
			tlv.MakePrimitiveRecord(typeNoteSpent, &spent),
			tlv.MakePrimitiveRecord(
				typeNotePendingSpent, &pendingSpent,
			),
		)
		if err != nil {
			return err
		}

		parsedTypes, err := tlvStream.DecodeWithParsedTypes(inner)
		if err != nil {
			return err
		}

		if t, ok := parsedTypes[typeNoteRecipient]; ok && t == nil {
			note.Recipient = recipient
		}
		note.Spent = parsedHash(parsedTypes, typeNoteSpent, spent)
		note.PendingSpent = parsedHash(
			parsedTypes, typeNotePendingSpent, pendingSpent,
		)

		notes = append(notes, note)

		return nil
	})
	if err != nil {
		return err
	}

	*v = notes

	return nil
}

// outputsEncoder is a custom TLV encoder for a slice of transparent
// outputs.
func outputsEncoder(w io.Writer, val interface{}, buf *[8]byte) error {
	v, ok := val.(*[]TransparentOutput)
	if !ok {
		return tlv.NewTypeForEncodingErr(val, "[]TransparentOutput")
	}

	for _, out := range *v {
		var (
			index  = out.Index
			value  = out.Value
			script = out.PkScript
		)

		tlvRecords := []tlv.Record{
			tlv.MakePrimitiveRecord(typeOutputIndex, &index),
			tlv.MakePrimitiveRecord(typeOutputValue, &value),
		}

		if len(script) > 0 {
			tlvRecords = append(tlvRecords, tlv.MakePrimitiveRecord(
				typeOutputScript, &script,
			))
		}

		tlvRecords = appendHashRecord(
			tlvRecords, typeOutputSpent, out.Spent,
		)
		tlvRecords = appendHashRecord(
			tlvRecords, typeOutputPendingSpent, out.PendingSpent,
		)

		if err := writeNested(w, tlvRecords, buf); err != nil {
			return err
		}
	}

	return nil
}

// outputsDecoder is a custom TLV decoder for a slice of transparent
// outputs.
func outputsDecoder(r io.Reader, val interface{}, buf *[8]byte,
	l uint64) error {

	v, ok := val.(*[]TransparentOutput)
	if !ok {
		return tlv.NewTypeForDecodingErr(val, "[]TransparentOutput", l, l)
	}

	var outputs []TransparentOutput
	err := readNested(r, l, buf, func(inner io.Reader) error {
		var (
			out          TransparentOutput
			script       []byte
			spent        [32]byte
			pendingSpent [32]byte
		)

		tlvStream, err := tlv.NewStream(
			tlv.MakePrimitiveRecord(typeOutputIndex, &out.Index),
			tlv.MakePrimitiveRecord(typeOutputValue, &out.Value),
			tlv.MakePrimitiveRecord(typeOutputScript, &script),
			tlv.MakePrimitiveRecord(typeOutputSpent, &spent),
			tlv.MakePrimitiveRecord(
				typeOutputPendingSpent, &pendingSpent,
			),
		)
		if err != nil {
			return err
		}

		parsedTypes, err := tlvStream.DecodeWithParsedTypes(inner)
		if err != nil {
			return err
		}

		if t, ok := parsedTypes[typeOutputScript]; ok && t == nil {
			out.PkScript = script
		}
		out.Spent = parsedHash(parsedTypes, typeOutputSpent, spent)
		out.PendingSpent = parsedHash(
			parsedTypes, typeOutputPendingSpent, pendingSpent,
		)

		outputs = append(outputs, out)

		return nil
	})
	if err != nil {
		return err
	}

	*v = outputs

	return nil
}

// appendHashRecord adds a 32 byte record for h if it is set.
func appendHashRecord(records []tlv.Record, typ tlv.Type,
	h fn.Option[chainhash.Hash]) []tlv.Record {

	h.WhenSome(func(hash chainhash.Hash) {
		b := [32]byte(hash)
		records = append(records, tlv.MakePrimitiveRecord(typ, &b))
	})

	return records
}

// parsedHash returns b as a hash if typ was fully parsed.
func parsedHash(parsedTypes tlv.TypeMap, typ tlv.Type,
	b [32]byte) fn.Option[chainhash.Hash] {

	if t, ok := parsedTypes[typ]; ok && t == nil {
		return fn.Some(chainhash.Hash(b))
	}

	return fn.None[chainhash.Hash]()
}

// writeNested encodes records as an inner TLV stream prefixed by its varint
// length.
func writeNested(w io.Writer, records []tlv.Record, buf *[8]byte) error {
	tlvStream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	var inner bytes.Buffer
	if err := tlvStream.Encode(&inner); err != nil {
		return err
	}

	err = tlv.WriteVarInt(w, uint64(inner.Len()), buf)
	if err != nil {
		return err
	}

	_, err = w.Write(inner.Bytes())

	return err
}

// readNested calls f once for every length prefixed inner stream found in
// the next l bytes of r.
func readNested(r io.Reader, l uint64, buf *[8]byte,
	f func(inner io.Reader) error) error {

	// The limited reader returns io.EOF once the list is exhausted so the
	// enclosing stream stops consuming bytes.
	listReader := &io.LimitedReader{R: r, N: int64(l)}

	for {
		blobSize, err := tlv.ReadVarInt(listReader, buf)
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		inner := &io.LimitedReader{R: listReader, N: int64(blobSize)}
		if err := f(inner); err != nil {
			return err
		}
	}
}

// recordSize returns the amount of bytes this TLV record will occupy when
// encoded.
func recordSize(encoder tlv.Encoder, v interface{}) uint64 {
	var (
		b   bytes.Buffer
		buf [8]byte
	)

	if err := encoder(&b, v, &buf); err != nil {
		log.Errorf("encoding the record failed: %v", err)
	}

	return uint64(b.Len())
}
