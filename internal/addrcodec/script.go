package addrcodec

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// ErrMalformedScript is returned by ParseScript for scripts that are not valid
// hex or whose pushes run past the end of the script.
var ErrMalformedScript = errors.New("malformed script")

// Op is one parsed script instruction. Data is set for push opcodes
// (OP_DATA_1..OP_DATA_75 and OP_PUSHDATA1/2/4) and nil otherwise.
type Op struct {
	Code byte
	Data []byte
}

// ParseScript decodes a hex script into its instructions.
func ParseScript(scriptHex string) ([]Op, error) {
	script, err := hex.DecodeString(scriptHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedScript, err)
	}

	return ParseScriptBytes(script)
}

// ParseScriptBytes is ParseScript for an already decoded script.
func ParseScriptBytes(script []byte) ([]Op, error) {
	var ops []Op
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		ops = append(ops, Op{Code: tokenizer.Opcode(), Data: tokenizer.Data()})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedScript, err)
	}

	return ops, nil
}

// Raw templates are matched byte for byte. A script that happens to produce
// the same instructions through a non-minimal push does not match.

// pubKeyHash matches OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG.
func pubKeyHash(script []byte) ([]byte, bool) {
	if len(script) != 25 ||
		script[0] != txscript.OP_DUP ||
		script[1] != txscript.OP_HASH160 ||
		script[2] != txscript.OP_DATA_20 ||
		script[23] != txscript.OP_EQUALVERIFY ||
		script[24] != txscript.OP_CHECKSIG {
		return nil, false
	}

	return script[3:23], true
}

// scriptHash matches OP_HASH160 <20> OP_EQUAL.
func scriptHash(script []byte) ([]byte, bool) {
	if len(script) != 23 ||
		script[0] != txscript.OP_HASH160 ||
		script[1] != txscript.OP_DATA_20 ||
		script[22] != txscript.OP_EQUAL {
		return nil, false
	}

	return script[2:22], true
}

// witnessProgram matches OP_n <program> for the given witness version and
// program sizes.
func witnessProgram(script []byte, version byte, sizes ...int) ([]byte, bool) {
	versionOp := byte(txscript.OP_0)
	if version > 0 {
		versionOp = txscript.OP_1 + version - 1
	}

	if len(script) < 2 || script[0] != versionOp {
		return nil, false
	}

	for _, size := range sizes {
		if int(script[1]) == size && len(script) == size+2 {
			return script[2:], true
		}
	}

	return nil, false
}

// redeemScriptKind inspects the spending input of a P2SH output. When the
// final scriptSig push is a v0 witness program the output is wrapped SegWit.
// A witness stack, when present, must commit to that program: its last item
// is the public key (P2WPKH) or the witness script (P2WSH). A stack that does
// not commit leaves the output as plain P2SH.
func redeemScriptKind(spend *Spend) ScriptKind {
	ops, err := ParseScript(spend.ScriptSigHex)
	if err != nil || len(ops) == 0 {
		return KindP2SH
	}

	redeem := ops[len(ops)-1].Data
	if program, ok := witnessProgram(redeem, 0, 20); ok && witnessCommits(spend.Witness, program, btcutil.Hash160) {
		return KindP2SHP2WPKH
	}
	if program, ok := witnessProgram(redeem, 0, 32); ok && witnessCommits(spend.Witness, program, chainhash.HashB) {
		return KindP2SHP2WSH
	}

	return KindP2SH
}

// witnessCommits reports whether the last witness item hashes to program.
// An empty witness is not checked.
func witnessCommits(witness []string, program []byte, hash func([]byte) []byte) bool {
	if len(witness) == 0 {
		return true
	}

	item, err := hex.DecodeString(witness[len(witness)-1])
	if err != nil {
		return false
	}

	return bytes.Equal(hash(item), program)
}
