package blockstream

import (
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/btcsuite/btcd/txscript"
	"github.com/gabapcia/btcwatch/internal/addrcodec"
)

// Payload is the data carried by a null-data output.
type Payload struct {
	Hex             string `json:"hex"`
	Text            string `json:"text,omitempty"`
	DecodingSuccess bool   `json:"decodingSuccess"`
}

// ExtractEmbeddedPayload returns the payload of the first null-data output
// of tx. The OP_RETURN marker and push prefixes are stripped; Text is set only
// when the bytes are valid UTF-8 made of printable characters.
func ExtractEmbeddedPayload(tx Transaction) (Payload, bool) {
	for _, out := range tx.Outputs {
		script, err := hex.DecodeString(out.ScriptHex)
		if err != nil || len(script) == 0 || script[0] != txscript.OP_RETURN {
			continue
		}

		data := nullData(script)
		payload := Payload{Hex: hex.EncodeToString(data)}
		if text, ok := printable(data); ok {
			payload.Text = text
			payload.DecodingSuccess = true
		}

		return payload, true
	}

	return Payload{}, false
}

// nullData concatenates the pushes following OP_RETURN. Scripts that do not
// parse fall back to the raw bytes after the marker and the first length byte.
func nullData(script []byte) []byte {
	ops, err := addrcodec.ParseScriptBytes(script)
	if err != nil {
		if len(script) <= 2 {
			return nil
		}
		return script[2:]
	}

	var data []byte
	for _, op := range ops[1:] {
		data = append(data, op.Data...)
	}

	return data
}

func printable(data []byte) (string, bool) {
	if len(data) == 0 || !utf8.Valid(data) {
		return "", false
	}

	text := string(data)
	ok := strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsPrint(r) && r != '\t' && r != '\n' && r != '\r'
	}) < 0

	return text, ok
}
