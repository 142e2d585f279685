package blockstream

import (
	"time"

	"github.com/shopspring/decimal"
)

// Block is a fully decoded block as fetched from the node. It is discarded
// once processed.
type Block struct {
	Height       int64
	Hash         string
	Time         time.Time
	Transactions []Transaction
}

// Transaction is a decoded transaction with its inputs and outputs in order.
type Transaction struct {
	TxID    string
	Inputs  []Input
	Outputs []Output
}

// Input spends a prior output. Coinbase inputs reference nothing.
type Input struct {
	Coinbase     bool
	PrevTxID     string
	PrevIndex    uint32
	ScriptSigHex string
	Witness      []string

	// Prevout is the spent output when the node already included it
	// (getblock verbosity 3). It is nil otherwise.
	Prevout *Output
}

// Output is a transaction output. Address and Addresses are the node's own
// decoding, when it provides one.
type Output struct {
	Index      uint32
	Value      decimal.Decimal
	ScriptHex  string
	ScriptType string
	Address    string
	Addresses  []string
}
