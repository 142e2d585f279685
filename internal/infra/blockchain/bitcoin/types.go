package bitcoin

import (
	"github.com/gabapcia/btcwatch/internal/blockstream"

	"github.com/shopspring/decimal"
)

type (
	// BlockchainInfo is the subset of getblockchaininfo the watcher reads.
	BlockchainInfo struct {
		Chain         string `json:"chain"`
		Blocks        int64  `json:"blocks"`
		Headers       int64  `json:"headers"`
		BestBlockHash string `json:"bestblockhash"`
		Pruned        bool   `json:"pruned"`
	}

	// ScriptSigResponse is an input's unlocking script.
	ScriptSigResponse struct {
		Asm string `json:"asm"`
		Hex string `json:"hex"`
	}

	// ScriptPubKeyResponse is an output's locking script. Address is set by
	// nodes since v22, Addresses by older ones.
	ScriptPubKeyResponse struct {
		Asm       string   `json:"asm"`
		Hex       string   `json:"hex"`
		Type      string   `json:"type"`
		Address   string   `json:"address,omitempty"`
		Addresses []string `json:"addresses,omitempty"`
	}

	// OutputResponse is an entry of vout, or the prevout of an input.
	OutputResponse struct {
		Value        decimal.Decimal      `json:"value"`
		N            uint32               `json:"n"`
		ScriptPubKey ScriptPubKeyResponse `json:"scriptPubKey"`
	}

	// InputResponse is an entry of vin. Coinbase is set instead of TxID for
	// the first input of a coinbase transaction.
	InputResponse struct {
		Coinbase    string            `json:"coinbase,omitempty"`
		TxID        string            `json:"txid,omitempty"`
		Vout        uint32            `json:"vout"`
		ScriptSig   ScriptSigResponse `json:"scriptSig"`
		TxInWitness []string          `json:"txinwitness,omitempty"`
		Sequence    uint32            `json:"sequence"`
		Prevout     *OutputResponse   `json:"prevout,omitempty"`
	}

	// TransactionResponse is a decoded transaction.
	TransactionResponse struct {
		TxID string           `json:"txid"`
		Hash string           `json:"hash"`
		Vin  []InputResponse  `json:"vin"`
		Vout []OutputResponse `json:"vout"`
	}

	// BlockResponse is getblock's reply at verbosity 2.
	BlockResponse struct {
		Hash              string                `json:"hash"`
		Height            int64                 `json:"height"`
		Time              int64                 `json:"time"`
		PreviousBlockHash string                `json:"previousblockhash"`
		NTx               int                   `json:"nTx"`
		Tx                []TransactionResponse `json:"tx"`
	}
)

func (o OutputResponse) toOutput() blockstream.Output {
	return blockstream.Output{
		Index:      o.N,
		Value:      o.Value,
		ScriptHex:  o.ScriptPubKey.Hex,
		ScriptType: o.ScriptPubKey.Type,
		Address:    o.ScriptPubKey.Address,
		Addresses:  o.ScriptPubKey.Addresses,
	}
}

func (i InputResponse) toInput() blockstream.Input {
	input := blockstream.Input{
		Coinbase:     i.Coinbase != "",
		PrevTxID:     i.TxID,
		PrevIndex:    i.Vout,
		ScriptSigHex: i.ScriptSig.Hex,
		Witness:      i.TxInWitness,
	}

	if i.Prevout != nil {
		prevout := i.Prevout.toOutput()
		prevout.Index = i.Vout
		input.Prevout = &prevout
	}

	return input
}

func (t TransactionResponse) toTransaction() blockstream.Transaction {
	tx := blockstream.Transaction{
		TxID:    t.TxID,
		Inputs:  make([]blockstream.Input, len(t.Vin)),
		Outputs: make([]blockstream.Output, len(t.Vout)),
	}

	for i, in := range t.Vin {
		tx.Inputs[i] = in.toInput()
	}
	for i, out := range t.Vout {
		tx.Outputs[i] = out.toOutput()
	}

	return tx
}

func (b BlockResponse) toBlock() *blockstream.Block {
	block := &blockstream.Block{
		Height:       b.Height,
		Hash:         b.Hash,
		Time:         blockTime(b.Time),
		Transactions: make([]blockstream.Transaction, len(b.Tx)),
	}

	for i, tx := range b.Tx {
		block.Transactions[i] = tx.toTransaction()
	}

	return block
}
