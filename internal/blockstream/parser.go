// Package blockstream walks the transactions of a fetched block one at a time,
// extracts OP_RETURN payloads and reports heap pressure against a ceiling.
package blockstream

import "iter"

// DefaultReclaimEvery is how many transactions pass between reclamation hints.
const DefaultReclaimEvery = 100

// Parser produces transaction sequences for blocks.
type Parser struct {
	reclaimEvery int
	reclaim      func()
}

// Option configures a Parser.
type Option func(*Parser)

// WithReclaimEvery sets how many transactions pass between calls to the
// reclamation hook. Values below 1 disable the hook.
func WithReclaimEvery(n int) Option {
	return func(p *Parser) {
		p.reclaimEvery = n
	}
}

// WithReclaimHook replaces the reclamation hook, HintReclaim by default.
func WithReclaimHook(f func()) Option {
	return func(p *Parser) {
		p.reclaim = f
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		reclaimEvery: DefaultReclaimEvery,
		reclaim:      HintReclaim,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Transactions yields the block's transactions with their position, in block
// order. The sequence reads the block's own slice and allocates nothing per
// transaction, so ranging over it again restarts from the first transaction.
// A nil block yields nothing.
func (p *Parser) Transactions(block *Block) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		if block == nil {
			return
		}

		for i, tx := range block.Transactions {
			if !yield(i, tx) {
				return
			}

			if p.reclaimEvery > 0 && p.reclaim != nil && (i+1)%p.reclaimEvery == 0 {
				p.reclaim()
			}
		}
	}
}
