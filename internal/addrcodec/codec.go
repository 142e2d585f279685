// Package addrcodec derives Bitcoin addresses from locking scripts.
//
// Two classifiers live here and they answer different questions:
//
//   - Codec.Encode is authoritative. It matches the script byte for byte
//     against the standard templates and computes the address text from the
//     raw hash or witness program (Base58Check, Bech32 or Bech32m).
//   - ClassifyAddressType only looks at an address's prefix to produce a
//     display label. It never validates an encoding and may disagree with
//     Encode; callers keep both.
package addrcodec

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
)

// ErrUnknownNetwork is returned by NetworkParams for unsupported network names.
var ErrUnknownNetwork = errors.New("unknown network")

// Script type tags as reported by bitcoind in scriptPubKey.type.
const (
	TypePubKeyHash          = "pubkeyhash"
	TypeScriptHash          = "scripthash"
	TypeWitnessV0KeyHash    = "witness_v0_keyhash"
	TypeWitnessV0ScriptHash = "witness_v0_scripthash"
	TypeWitnessV1Taproot    = "witness_v1_taproot"
	TypeNullData            = "nulldata"
)

// ScriptKind is the template a locking script was matched against.
type ScriptKind string

const (
	KindP2PKH      ScriptKind = "P2PKH"
	KindP2SH       ScriptKind = "P2SH"
	KindP2SHP2WPKH ScriptKind = "P2SH-P2WPKH"
	KindP2SHP2WSH  ScriptKind = "P2SH-P2WSH"
	KindP2WPKH     ScriptKind = "P2WPKH"
	KindP2WSH      ScriptKind = "P2WSH"
	KindP2TR       ScriptKind = "P2TR"
)

// Address is an encoded address together with the template it came from.
type Address struct {
	Text string
	Kind ScriptKind
}

// Spend carries the unlocking data of the input spending an output. It is
// only needed to tell wrapped SegWit apart from plain P2SH. Witness holds the
// hex items of the input's witness stack, in order.
type Spend struct {
	ScriptSigHex string
	Witness      []string
}

// Codec encodes addresses for one network.
type Codec struct {
	params *chaincfg.Params
}

// New returns a Codec for params. A nil params selects mainnet.
func New(params *chaincfg.Params) *Codec {
	if params == nil {
		params = &chaincfg.MainNetParams
	}

	return &Codec{params: params}
}

// NetworkParams maps a network name to its chain parameters.
func NetworkParams(name string) (*chaincfg.Params, error) {
	switch name {
	case "", "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

// Encode derives the address locked by scriptHex, which bitcoind tagged as
// scriptType. An empty scriptType makes Encode infer the template from the
// script itself. spend may be nil.
//
// The boolean is false when there is no watchable address: null-data or
// non-standard scripts, unknown tags, bad hex or a script that does not match
// the template its tag claims. Encode is a pure function of its arguments.
func (c *Codec) Encode(scriptType, scriptHex string, spend *Spend) (Address, bool) {
	script, err := hex.DecodeString(scriptHex)
	if err != nil {
		return Address{}, false
	}

	if scriptType == "" {
		scriptType = inferType(script)
	}

	switch scriptType {
	case TypePubKeyHash:
		hash, ok := pubKeyHash(script)
		if !ok {
			return Address{}, false
		}
		return Address{Text: base58.CheckEncode(hash, c.params.PubKeyHashAddrID), Kind: KindP2PKH}, true

	case TypeScriptHash:
		hash, ok := scriptHash(script)
		if !ok {
			return Address{}, false
		}
		kind := KindP2SH
		if spend != nil {
			kind = redeemScriptKind(spend)
		}
		return Address{Text: base58.CheckEncode(hash, c.params.ScriptHashAddrID), Kind: kind}, true

	case TypeWitnessV0KeyHash:
		return c.segwit(script, 0, KindP2WPKH, 20)

	case TypeWitnessV0ScriptHash:
		return c.segwit(script, 0, KindP2WSH, 32)

	case TypeWitnessV1Taproot:
		return c.segwit(script, 1, KindP2TR, 32)
	}

	return Address{}, false
}

func (c *Codec) segwit(script []byte, version byte, kind ScriptKind, size int) (Address, bool) {
	program, ok := witnessProgram(script, version, size)
	if !ok {
		return Address{}, false
	}

	text, err := encodeSegwit(c.params.Bech32HRPSegwit, version, program)
	if err != nil {
		return Address{}, false
	}

	return Address{Text: text, Kind: kind}, true
}

// encodeSegwit regroups the witness program into 5-bit words behind the
// version word. Version 0 uses the Bech32 checksum constant and later versions
// use Bech32m.
func encodeSegwit(hrp string, version byte, program []byte) (string, error) {
	words, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}

	data := append([]byte{version}, words...)
	if version == 0 {
		return bech32.Encode(hrp, data)
	}

	return bech32.EncodeM(hrp, data)
}

// inferType returns the bitcoind tag of the template script matches, or ""
// when none does.
func inferType(script []byte) string {
	if _, ok := pubKeyHash(script); ok {
		return TypePubKeyHash
	}
	if _, ok := scriptHash(script); ok {
		return TypeScriptHash
	}
	if _, ok := witnessProgram(script, 0, 20); ok {
		return TypeWitnessV0KeyHash
	}
	if _, ok := witnessProgram(script, 0, 32); ok {
		return TypeWitnessV0ScriptHash
	}
	if _, ok := witnessProgram(script, 1, 32); ok {
		return TypeWitnessV1Taproot
	}

	return ""
}
