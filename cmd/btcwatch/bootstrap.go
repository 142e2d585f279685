package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/btcwatch/internal/addrcodec"
	"github.com/gabapcia/btcwatch/internal/blockproc"
	"github.com/gabapcia/btcwatch/internal/config"
	"github.com/gabapcia/btcwatch/internal/infra/blockchain/bitcoin"
	"github.com/gabapcia/btcwatch/internal/infra/messaging/nats"
	"github.com/gabapcia/btcwatch/internal/infra/notifier"
	"github.com/gabapcia/btcwatch/internal/infra/storage/redis"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/pkg/telemetry"
	"github.com/gabapcia/btcwatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/btcwatch/internal/pricefeed"
	"github.com/gabapcia/btcwatch/internal/walletwatch"
)

// watchListStore is where the watch-list can be reloaded from at runtime.
type watchListStore interface {
	LoadWatchList(ctx context.Context, key string) (map[string]string, error)
}

// redisStore is the Redis client as used here.
type redisStore interface {
	watchListStore
	Stream(key string) *redis.Stream
	Close() error
}

// bootstrap wires the monitor from the environment. Every resource opened
// along the way is closed by the returned release function, or right away
// when a later step fails.
func bootstrap(ctx context.Context) (_ blockproc.Service, _ func(), err error) {
	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var store redisStore
	if cfg.RedisAddr != "" {
		rc, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { rc.Close() })
		store = rc

		if cfg.WatchListRedisKey != "" {
			entries, err := rc.LoadWatchList(ctx, cfg.WatchListRedisKey)
			if err != nil {
				return nil, nil, err
			}
			cfg.MergeWatchList(entries)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(ctx, w)
	}

	if cfg.OTELEnabled {
		shutdown, err := telemetry.Init(ctx, "btcwatch", version)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn(context.Background(), "telemetry shutdown failed", "error", err)
			}
		})
	}

	params, err := addrcodec.NetworkParams(cfg.Network)
	if err != nil {
		return nil, nil, err
	}

	rpcOpts := []jsonrpc.Option{jsonrpc.WithTimeout(cfg.RPCTimeout)}
	if cfg.RPCUser != "" || cfg.RPCPassword != "" {
		rpcOpts = append(rpcOpts, jsonrpc.WithBasicAuth(cfg.RPCUser, cfg.RPCPassword))
	}
	node := bitcoin.NewClient(jsonrpc.NewClient(cfg.RPCURL, rpcOpts...))

	_ = logNodeInfo(ctx, node)

	detector := walletwatch.New(node, walletwatch.NewWatchList(cfg.WatchList),
		walletwatch.WithCodec(addrcodec.New(params)),
		walletwatch.WithLookupConcurrency(cfg.LookupConcurrency),
		walletwatch.WithAlwaysResolveInputs(cfg.AlwaysResolveInputs),
	)

	sinks := []blockproc.Notifier{notifier.NewLog()}
	if cfg.OTELEnabled {
		m, err := notifier.NewMetrics(telemetry.Meter())
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, m)
	}

	if cfg.NATSURL != "" {
		pub, err := nats.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { pub.Close() })
		sinks = append(sinks, pub)
	}

	if store != nil && cfg.RedisStream != "" {
		sinks = append(sinks, store.Stream(cfg.RedisStream))
	}

	opts := []blockproc.Option{
		blockproc.WithPollInterval(cfg.PollInterval),
		blockproc.WithMemoryLimitMB(cfg.MemoryLimitMB),
	}
	if cfg.ConvertUSD {
		opts = append(opts, blockproc.WithPriceSource(
			pricefeed.NewCache(pricefeed.NewHTTPSource(cfg.PriceURL), pricefeed.WithTTL(cfg.PriceTTL)),
		))
	}

	var reloadFrom watchListStore
	if store != nil {
		reloadFrom = store
	}
	stopReload := reloadOnHangup(ctx, detector, reloadFrom, cfg.WatchListRedisKey)
	closers = append(closers, stopReload)

	return blockproc.New(node, detector, notifier.NewFanout(sinks...), opts...), release, nil
}

// reloadOnHangup rebuilds the watch-list on SIGHUP and swaps it into the
// detector in one step. Detections in flight keep the list they started with.
func reloadOnHangup(ctx context.Context, detector walletwatch.Service, store watchListStore, redisKey string) func() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-hup:
				if err := reloadWatchList(ctx, detector, store, redisKey); err != nil {
					logger.Error(ctx, "watch-list reload failed", "error", err)
				}
			}
		}
	}()

	return func() {
		signal.Stop(hup)
		close(done)
	}
}

var errEmptyReload = errors.New("reloaded watch-list is empty")

func reloadWatchList(ctx context.Context, detector walletwatch.Service, store watchListStore, redisKey string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if store != nil && redisKey != "" {
		entries, err := store.LoadWatchList(ctx, redisKey)
		if err != nil {
			return err
		}
		cfg.MergeWatchList(entries)
	}

	if len(cfg.WatchList) == 0 {
		return errEmptyReload
	}

	watchList := walletwatch.NewWatchList(cfg.WatchList)
	detector.Replace(watchList)
	logger.Info(ctx, "watch-list reloaded", "watchlist.size", detector.Len())
	logger.Debug(ctx, "watch-list entries", "watchlist.addresses", watchList.Addresses())

	return nil
}

type chainInfoReader interface {
	GetBlockchainInfo(ctx context.Context) (bitcoin.BlockchainInfo, error)
}

// logNodeInfo logs which chain the node follows. Failures are warned about and
// returned; startup continues either way.
func logNodeInfo(ctx context.Context, node chainInfoReader) error {
	info, err := node.GetBlockchainInfo(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to read node chain info", "error", err)
		return err
	}

	logger.Info(ctx, "connected to node",
		"chain", info.Chain,
		"block.height", info.Blocks,
		"chain.pruned", info.Pruned,
	)

	return nil
}
