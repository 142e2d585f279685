package blockstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txWithScripts(scripts ...string) Transaction {
	tx := Transaction{TxID: "abc"}
	for i, s := range scripts {
		tx.Outputs = append(tx.Outputs, Output{Index: uint32(i), ScriptHex: s})
	}
	return tx
}

func TestExtractEmbeddedPayload(t *testing.T) {
	t.Run("decodes printable text", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a0b48656c6c6f20776f726c64"))

		require.True(t, ok)
		assert.True(t, payload.DecodingSuccess)
		assert.Equal(t, "Hello world", payload.Text)
		assert.Equal(t, "48656c6c6f20776f726c64", payload.Hex)
	})

	t.Run("keeps binary data as hex only", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a03deadbe"))

		require.True(t, ok)
		assert.False(t, payload.DecodingSuccess)
		assert.Empty(t, payload.Text)
		assert.Equal(t, "deadbe", payload.Hex)
	})

	t.Run("finds the null-data output among regular ones", func(t *testing.T) {
		tx := txWithScripts(
			"0014751e76e8199196d454941c45d1b3a323f1433bd6",
			"6a0474657374",
		)

		payload, ok := ExtractEmbeddedPayload(tx)

		require.True(t, ok)
		assert.Equal(t, "test", payload.Text)
	})

	t.Run("strips PUSHDATA1 prefixes", func(t *testing.T) {
		text := strings.Repeat("a", 80)
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a4c50" + strings.Repeat("61", 80)))

		require.True(t, ok)
		assert.Equal(t, text, payload.Text)
	})

	t.Run("accepts common whitespace", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a0461090a62"))

		require.True(t, ok)
		assert.True(t, payload.DecodingSuccess)
		assert.Equal(t, "a\t\nb", payload.Text)
	})

	t.Run("rejects control characters", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a03610062"))

		require.True(t, ok)
		assert.False(t, payload.DecodingSuccess)
		assert.Equal(t, "610062", payload.Hex)
	})

	t.Run("a bare OP_RETURN carries an empty payload", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a"))

		require.True(t, ok)
		assert.Empty(t, payload.Hex)
		assert.False(t, payload.DecodingSuccess)
	})

	t.Run("falls back to raw bytes for malformed pushes", func(t *testing.T) {
		payload, ok := ExtractEmbeddedPayload(txWithScripts("6a0b48656c6c6f"))

		require.True(t, ok)
		assert.Equal(t, "48656c6c6f", payload.Hex)
		assert.Equal(t, "Hello", payload.Text)
	})

	t.Run("returns false without a null-data output", func(t *testing.T) {
		_, ok := ExtractEmbeddedPayload(txWithScripts("76a91462e907b15cbf27d5425399ebf6f0fb50ebb88f1888ac", "zz", ""))

		assert.False(t, ok)
	})
}
