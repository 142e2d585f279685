package walletwatch

import (
	"github.com/gabapcia/btcwatch/internal/addrcodec"

	"github.com/shopspring/decimal"
)

// Direction tells on which side of a transaction a watched address appears.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// TransactionType summarizes the directions of all involvements.
type TransactionType string

const (
	TransactionIncoming TransactionType = "incoming"
	TransactionOutgoing TransactionType = "outgoing"
	TransactionBoth     TransactionType = "both"
	TransactionNone     TransactionType = "none"
)

// Involvement is one watched address appearing in one input or output.
type Involvement struct {
	Address     string                `json:"address"`
	Label       string                `json:"label"`
	Direction   Direction             `json:"direction"`
	Amount      decimal.Decimal       `json:"amount"`
	Index       uint32                `json:"index"`                // vin or vout position
	AddressType addrcodec.AddressType `json:"addressType"`          // display label from the address prefix
	ScriptKind  addrcodec.ScriptKind  `json:"scriptKind,omitempty"` // template matched by the codec, empty when the node decoded the address
}

// Result is the outcome of matching one transaction against the watch-list.
type Result struct {
	Matched         bool
	Involvements    []Involvement
	TransactionType TransactionType

	// TotalBTC adds up every involvement regardless of direction. It is the
	// volume touched by watched addresses, not a net figure.
	TotalBTC decimal.Decimal

	// BalanceDifference is outputs minus inputs. It is only set when watched
	// addresses appear on both sides.
	BalanceDifference *decimal.Decimal
}

func newResult(involvements []Involvement) Result {
	result := Result{
		Involvements:    involvements,
		TransactionType: TransactionNone,
		TotalBTC:        decimal.Zero,
	}
	if result.Involvements == nil {
		result.Involvements = []Involvement{}
	}

	var (
		inputs, outputs       = decimal.Zero, decimal.Zero
		hasInputs, hasOutputs bool
	)
	for _, inv := range result.Involvements {
		result.TotalBTC = result.TotalBTC.Add(inv.Amount)

		switch inv.Direction {
		case DirectionInput:
			inputs = inputs.Add(inv.Amount)
			hasInputs = true
		case DirectionOutput:
			outputs = outputs.Add(inv.Amount)
			hasOutputs = true
		}
	}

	switch {
	case hasInputs && hasOutputs:
		result.TransactionType = TransactionBoth
		diff := outputs.Sub(inputs)
		result.BalanceDifference = &diff
	case hasInputs:
		result.TransactionType = TransactionOutgoing
	case hasOutputs:
		result.TransactionType = TransactionIncoming
	}

	result.Matched = len(result.Involvements) > 0
	return result
}
