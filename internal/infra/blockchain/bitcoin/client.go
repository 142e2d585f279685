// Package bitcoin exposes the bitcoind JSON-RPC methods the watcher needs and
// maps their responses into blockstream types.
package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/transport/jsonrpc"
)

// blockVerbosityFull asks getblock for fully decoded transactions.
const blockVerbosityFull = 2

// client talks to a bitcoind-compatible node.
type client struct {
	conn jsonrpc.Client
}

// NewClient creates a node client on top of a JSON-RPC connection.
func NewClient(conn jsonrpc.Client) *client {
	return &client{
		conn: conn,
	}
}

// call fetches method and decodes its result into out.
func (c *client) call(ctx context.Context, out any, method string, params ...any) error {
	data, err := c.conn.Fetch(ctx, method, params...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}

	return nil
}

// Ping checks that the node answers RPC calls.
func (c *client) Ping(ctx context.Context) error {
	_, err := c.conn.Fetch(ctx, "ping")
	return err
}

// GetBlockchainInfo returns the node's chain name and tip.
func (c *client) GetBlockchainInfo(ctx context.Context) (BlockchainInfo, error) {
	var info BlockchainInfo
	return info, c.call(ctx, &info, "getblockchaininfo")
}

// GetBlockCount returns the height of the most-work fully validated chain.
func (c *client) GetBlockCount(ctx context.Context) (int64, error) {
	var height int64
	return height, c.call(ctx, &height, "getblockcount")
}

// GetBlockHash returns the hash of the block at height in the active chain.
func (c *client) GetBlockHash(ctx context.Context, height int64) (string, error) {
	var hash string
	return hash, c.call(ctx, &hash, "getblockhash", height)
}

// GetBlock fetches the block with fully decoded transactions. A null result
// yields a nil block and no error.
func (c *client) GetBlock(ctx context.Context, hash string) (*blockstream.Block, error) {
	var resp *BlockResponse
	if err := c.call(ctx, &resp, "getblock", hash, blockVerbosityFull); err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, nil
	}

	return resp.toBlock(), nil
}

// GetRawTransaction fetches a decoded transaction by id. Transactions outside
// the mempool are only found by nodes running with -txindex.
func (c *client) GetRawTransaction(ctx context.Context, txid string) (blockstream.Transaction, error) {
	var resp TransactionResponse
	if err := c.call(ctx, &resp, "getrawtransaction", txid, true); err != nil {
		return blockstream.Transaction{}, err
	}

	return resp.toTransaction(), nil
}

// blockTime converts a block header timestamp.
func blockTime(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}

	return time.Unix(unix, 0).UTC()
}
