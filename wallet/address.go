// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// TransparentAddressKind is the kind of script a transparent address pays
// to.
type TransparentAddressKind uint8

const (
	// PubKeyHash is a pay-to-public-key-hash address.
	PubKeyHash TransparentAddressKind = iota

	// ScriptHash is a pay-to-script-hash address.
	ScriptHash
)

// String returns the name of the address kind.
func (k TransparentAddressKind) String() string {
	switch k {
	case PubKeyHash:
		return "p2pkh"
	case ScriptHash:
		return "p2sh"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// AddressParams holds the two byte version prefixes of the transparent
// addresses of a network.
type AddressParams struct {
	PubKeyHashPrefix [2]byte
	ScriptHashPrefix [2]byte
}

var (
	// MainNetAddressParams are the address prefixes of the main network
	// (t1 and t3 addresses).
	MainNetAddressParams = AddressParams{
		PubKeyHashPrefix: [2]byte{0x1c, 0xb8},
		ScriptHashPrefix: [2]byte{0x1c, 0xbd},
	}

	// TestNetAddressParams are the address prefixes of the test network
	// (tm and t2 addresses).
	TestNetAddressParams = AddressParams{
		PubKeyHashPrefix: [2]byte{0x1d, 0x25},
		ScriptHashPrefix: [2]byte{0x1c, 0xba},
	}
)

// TransparentAddress is a transparent address: a 20 byte hash of either a
// public key or a redeem script.
type TransparentAddress struct {
	Kind TransparentAddressKind
	Hash [20]byte
}

// String returns the kind and hash of the address. Use Encode for the user
// facing form.
func (a TransparentAddress) String() string {
	return a.Kind.String() + ":" + hex.EncodeToString(a.Hash[:])
}

// Encode returns the base58check form of the address for the network with
// the given params.
func (a TransparentAddress) Encode(params *AddressParams) string {
	prefix := params.PubKeyHashPrefix
	if a.Kind == ScriptHash {
		prefix = params.ScriptHashPrefix
	}

	b := make([]byte, 0, len(prefix)+len(a.Hash)+4)
	b = append(b, prefix[:]...)
	b = append(b, a.Hash[:]...)
	b = append(b, chainhash.DoubleHashB(b)[:4]...)

	return base58.Encode(b)
}

// DecodeTransparentAddress parses a base58check encoded transparent
// address of the network with the given params.
func DecodeTransparentAddress(s string,
	params *AddressParams) (TransparentAddress, error) {

	b := base58.Decode(s)
	if len(b) != 2+20+4 {
		return TransparentAddress{}, fmt.Errorf("%w: %q has wrong "+
			"length", ErrInvalidAddress, s)
	}

	payload, checksum := b[:22], b[22:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:4], checksum) {
		return TransparentAddress{}, fmt.Errorf("%w: %q has bad "+
			"checksum", ErrInvalidAddress, s)
	}

	var addr TransparentAddress
	switch {
	case bytes.Equal(payload[:2], params.PubKeyHashPrefix[:]):
		addr.Kind = PubKeyHash
	case bytes.Equal(payload[:2], params.ScriptHashPrefix[:]):
		addr.Kind = ScriptHash
	default:
		return TransparentAddress{}, fmt.Errorf("%w: %q has unknown "+
			"prefix %x", ErrInvalidAddress, s, payload[:2])
	}
	copy(addr.Hash[:], payload[2:])

	return addr, nil
}

// PayToAddrScript returns the locking script paying to the address.
func (a TransparentAddress) PayToAddrScript() ([]byte, error) {
	switch a.Kind {
	case PubKeyHash:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_DUP).
			AddOp(txscript.OP_HASH160).
			AddData(a.Hash[:]).
			AddOp(txscript.OP_EQUALVERIFY).
			AddOp(txscript.OP_CHECKSIG).
			Script()

	case ScriptHash:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_HASH160).
			AddData(a.Hash[:]).
			AddOp(txscript.OP_EQUAL).
			Script()

	default:
		return nil, fmt.Errorf("%w: unknown kind %v",
			ErrInvalidAddress, a.Kind)
	}
}

// IsPaidBy returns whether pkScript is a standard script paying to the
// address.
func (a TransparentAddress) IsPaidBy(pkScript []byte) bool {
	var hash []byte
	switch txscript.GetScriptClass(pkScript) {
	case txscript.PubKeyHashTy:
		if a.Kind != PubKeyHash {
			return false
		}

		// OP_DUP OP_HASH160 OP_DATA_20 <hash> ...
		hash = pkScript[3:23]

	case txscript.ScriptHashTy:
		if a.Kind != ScriptHash {
			return false
		}

		// OP_HASH160 OP_DATA_20 <hash> OP_EQUAL
		hash = pkScript[2:22]

	default:
		return false
	}

	return bytes.Equal(hash, a.Hash[:])
}
