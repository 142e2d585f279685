package blockproc

import (
	"time"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/walletwatch"

	"github.com/shopspring/decimal"
)

// State is the monitor lifecycle phase.
type State string

const (
	StateStopped    State = "stopped"
	StateConnecting State = "connecting"
	StateRunning    State = "running"
)

// Level is the severity of a system event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification describes one matched transaction. It is built, handed to the
// Notifier and dropped; nothing keeps it.
type Notification struct {
	ID                string                      `json:"id"`
	Timestamp         time.Time                   `json:"timestamp"`
	BlockHeight       int64                       `json:"blockHeight"`
	BlockHash         string                      `json:"blockHash"`
	TxID              string                      `json:"txid"`
	TransactionType   walletwatch.TransactionType `json:"transactionType"`
	Involvements      []walletwatch.Involvement   `json:"involvements"`
	WatchedAddresses  []string                    `json:"watchedAddresses"`
	TotalBTC          decimal.Decimal             `json:"totalBTC"`
	TotalUSD          *decimal.Decimal            `json:"totalUSD,omitempty"`
	BalanceDifference *decimal.Decimal            `json:"balanceDifference,omitempty"`
	Payload           *blockstream.Payload        `json:"payload,omitempty"`
}

// Metrics summarizes the processing of one block.
type Metrics struct {
	BlockHeight       int64   `json:"blockHeight"`
	MemoryMB          float64 `json:"memoryMB"`
	BlockProcessingMS int64   `json:"blockProcessingMS"`
	TxCount           int     `json:"txCount"`
	Matches           int     `json:"matches"`
	LatencyMS         int64   `json:"latencyMS"` // time since the block's header timestamp
}

// Status is a point-in-time view of the monitor.
type Status struct {
	State               State   `json:"state"`
	Running             bool    `json:"running"`
	LastProcessedHeight int64   `json:"lastProcessedHeight"`
	WatchedCount        int     `json:"watchedCount"`
	MemoryMB            float64 `json:"memoryMB"`
}
