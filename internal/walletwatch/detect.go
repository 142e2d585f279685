package walletwatch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gabapcia/btcwatch/internal/addrcodec"
	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/btcwatch/internal/pkg/types"

	"golang.org/x/sync/errgroup"
)

// Detect implements Service.
//
// Inputs are only examined once an output matched, unless the service was
// built with WithAlwaysResolveInputs. A transaction that spends from a
// watched address without paying one is therefore reported as "none" by
// default.
func (s *service) Detect(ctx context.Context, tx blockstream.Transaction) Result {
	watchList := s.watchList.Load()

	involvements := s.detectOutputs(watchList, tx)
	if len(involvements) > 0 || s.alwaysResolveInputs {
		involvements = append(involvements, s.detectInputs(ctx, watchList, tx)...)
	}

	return newResult(involvements)
}

// addressOf derives the address locked by out. The codec is authoritative;
// the node's own decoding is the fallback for templates the codec rejects.
func (s *service) addressOf(out blockstream.Output, spend *addrcodec.Spend) (string, addrcodec.ScriptKind, bool) {
	if addr, ok := s.codec.Encode(out.ScriptType, out.ScriptHex, spend); ok {
		return addr.Text, addr.Kind, true
	}

	if out.Address != "" {
		return out.Address, "", true
	}

	if len(out.Addresses) > 0 {
		return out.Addresses[0], "", true
	}

	return "", "", false
}

// match builds an involvement when out pays a watched address.
func (s *service) match(watchList *WatchList, out blockstream.Output, spend *addrcodec.Spend, direction Direction, index uint32) (Involvement, bool) {
	address, kind, ok := s.addressOf(out, spend)
	if !ok {
		return Involvement{}, false
	}

	label, watched := watchList.Lookup(address)
	if !watched {
		return Involvement{}, false
	}

	return Involvement{
		Address:     address,
		Label:       label,
		Direction:   direction,
		Amount:      out.Value,
		Index:       index,
		AddressType: addrcodec.ClassifyAddressType(address),
		ScriptKind:  kind,
	}, true
}

func (s *service) detectOutputs(watchList *WatchList, tx blockstream.Transaction) []Involvement {
	var involvements []Involvement
	for _, out := range tx.Outputs {
		if inv, ok := s.match(watchList, out, nil, DirectionOutput, out.Index); ok {
			involvements = append(involvements, inv)
		}
	}

	return involvements
}

// detectInputs resolves the outputs spent by tx and matches them. Inputs that
// carry their prevout are matched directly. The others are grouped by spent
// transaction so each one is fetched once, with at most lookupConcurrency
// fetches in flight.
func (s *service) detectInputs(ctx context.Context, watchList *WatchList, tx blockstream.Transaction) []Involvement {
	var (
		mu           sync.Mutex
		involvements []Involvement

		// spent txid -> positions of the inputs spending from it
		pending = types.NewDefaultMap[string](func() []int { return nil })
	)

	collect := func(inv Involvement) {
		mu.Lock()
		defer mu.Unlock()
		involvements = append(involvements, inv)
	}

	for i, in := range tx.Inputs {
		switch {
		case in.Coinbase:
			continue
		case in.Prevout != nil:
			if inv, ok := s.match(watchList, *in.Prevout, spendOf(in), DirectionInput, uint32(i)); ok {
				collect(inv)
			}
		case in.PrevTxID != "":
			pending.Set(in.PrevTxID, append(pending.Get(in.PrevTxID), i))
		}
	}

	var g errgroup.Group
	g.SetLimit(s.lookupConcurrency)

	for txid, positions := range pending.ToMap() {
		g.Go(func() error {
			prev, err := s.lookup(ctx, txid)
			if err != nil {
				logger.Warn(ctx, "input left unresolved",
					"tx.id", tx.TxID,
					"prevout.txid", txid,
					"error", err,
				)
				return nil
			}

			for _, i := range positions {
				in := tx.Inputs[i]

				out, ok := outputAt(prev, in.PrevIndex)
				if !ok {
					logger.Warn(ctx, "spent output index out of range",
						"tx.id", tx.TxID,
						"prevout.txid", txid,
						"prevout.index", in.PrevIndex,
					)
					continue
				}

				if inv, ok := s.match(watchList, out, spendOf(in), DirectionInput, uint32(i)); ok {
					collect(inv)
				}
			}

			return nil
		})
	}

	// Workers never return errors; failed lookups are logged above.
	_ = g.Wait()

	slices.SortFunc(involvements, func(a, b Involvement) int {
		return int(a.Index) - int(b.Index)
	})

	return involvements
}

// lookup fetches a spent transaction, first waiting out any rate-limit
// cooldown. A rate-limited failure starts a new cooldown.
func (s *service) lookup(ctx context.Context, txid string) (blockstream.Transaction, error) {
	if wait := time.Unix(0, s.cooldownUntil.Load()).Sub(s.now()); wait > 0 {
		if !s.sleep(ctx, wait) {
			return blockstream.Transaction{}, ctx.Err()
		}
	}

	tx, err := s.resolver.GetRawTransaction(ctx, txid)
	if err != nil && jsonrpc.IsRateLimited(err) {
		s.cooldownUntil.Store(s.now().Add(s.rateLimitCooldown).UnixNano())
		logger.Warn(ctx, "prevout lookups rate limited, cooling down",
			"cooldown", s.rateLimitCooldown.String(),
		)
	}

	return tx, err
}

func spendOf(in blockstream.Input) *addrcodec.Spend {
	return &addrcodec.Spend{
		ScriptSigHex: in.ScriptSigHex,
		Witness:      in.Witness,
	}
}

// outputAt returns the output with the given index.
func outputAt(tx blockstream.Transaction, index uint32) (blockstream.Output, bool) {
	if int(index) < len(tx.Outputs) && tx.Outputs[index].Index == index {
		return tx.Outputs[index], true
	}

	for _, out := range tx.Outputs {
		if out.Index == index {
			return out, true
		}
	}

	return blockstream.Output{}, false
}
