// Package config loads the watcher settings from BTCWATCH_* environment
// variables and an optional YAML watch-list file.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/gabapcia/btcwatch/internal/addrcodec"
	"github.com/gabapcia/btcwatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every variable name, e.g. BTCWATCH_RPC_URL.
const EnvPrefix = "BTCWATCH"

const (
	minAdvisedPollInterval = time.Second
	minAdvisedMemoryMB     = 128
	maxAdvisedWatchList    = 1000
)

var (
	// ErrEmptyWatchList is returned by Validate when no address is configured.
	ErrEmptyWatchList = errors.New("watch-list is empty")

	// ErrMalformedWatchList is returned when a watch-list entry cannot be parsed.
	ErrMalformedWatchList = errors.New("malformed watch-list")
)

// Config holds every runtime setting.
type Config struct {
	RPCURL      string        `envconfig:"RPC_URL" validate:"required,url"`
	RPCUser     string        `envconfig:"RPC_USER"`
	RPCPassword string        `envconfig:"RPC_PASSWORD"`
	RPCTimeout  time.Duration `envconfig:"RPC_TIMEOUT" default:"30s" validate:"gt=0"`
	Network     string        `envconfig:"NETWORK" default:"mainnet" validate:"required"`

	// WatchListEntries is the raw "addr=label,addr2=label2" list.
	WatchListEntries  string `envconfig:"WATCHLIST"`
	WatchListFile     string `envconfig:"WATCHLIST_FILE" validate:"omitempty,file"`
	WatchListRedisKey string `envconfig:"WATCHLIST_REDIS_KEY"`

	// WatchList is the merged address to label map. It is filled by Load and
	// MergeWatchList, never from the environment directly.
	WatchList map[string]string `ignored:"true"`

	PollInterval        time.Duration `envconfig:"POLL_INTERVAL" default:"5s" validate:"gt=0"`
	MemoryLimitMB       int           `envconfig:"MEMORY_LIMIT_MB" default:"512" validate:"gte=0"`
	LookupConcurrency   int           `envconfig:"LOOKUP_CONCURRENCY" default:"5" validate:"gt=0"`
	AlwaysResolveInputs bool          `envconfig:"ALWAYS_RESOLVE_INPUTS" default:"false"`

	ConvertUSD bool          `envconfig:"CONVERT_USD" default:"false"`
	PriceURL   string        `envconfig:"PRICE_URL" default:"https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd" validate:"omitempty,url"`
	PriceTTL   time.Duration `envconfig:"PRICE_TTL" default:"60s" validate:"gt=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	RedisAddr     string `envconfig:"REDIS_ADDR" validate:"required_with=WatchListRedisKey RedisStream"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	RedisStream   string `envconfig:"REDIS_STREAM"`

	NATSURL     string `envconfig:"NATS_URL" validate:"omitempty,url"`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"btcwatch.notifications" validate:"required_with=NATSURL"`

	OTELEnabled bool `envconfig:"OTEL_ENABLED" default:"false"`
}

// Load reads the environment and merges the inline and file watch-lists.
// Entries from the file win over inline ones. The result is not validated.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	inline, err := ParseWatchList(cfg.WatchListEntries)
	if err != nil {
		return Config{}, err
	}
	cfg.MergeWatchList(inline)

	if cfg.WatchListFile != "" {
		fromFile, err := ReadWatchListFile(cfg.WatchListFile)
		if err != nil {
			return Config{}, err
		}
		cfg.MergeWatchList(fromFile)
	}

	return cfg, nil
}

// MergeWatchList adds entries to the watch-list, replacing existing labels.
func (c *Config) MergeWatchList(entries map[string]string) {
	if c.WatchList == nil {
		c.WatchList = make(map[string]string, len(entries))
	}
	maps.Copy(c.WatchList, entries)
}

// Validate reports configuration errors that must stop the process before
// polling begins.
func (c Config) Validate() error {
	var errs []error
	if err := validator.Validate(c); err != nil {
		errs = append(errs, err)
	}

	if _, err := addrcodec.NetworkParams(c.Network); err != nil {
		errs = append(errs, err)
	}

	if len(c.WatchList) == 0 {
		errs = append(errs, ErrEmptyWatchList)
	}

	return errors.Join(errs...)
}

// Warnings lists settings that are valid but likely to cause trouble.
func (c Config) Warnings() []string {
	var warnings []string

	if c.PollInterval < minAdvisedPollInterval {
		warnings = append(warnings, fmt.Sprintf("poll interval %s is below %s and may overload the node", c.PollInterval, minAdvisedPollInterval))
	}

	if c.MemoryLimitMB > 0 && c.MemoryLimitMB < minAdvisedMemoryMB {
		warnings = append(warnings, fmt.Sprintf("memory limit %dMB is below %dMB; large blocks may exceed it", c.MemoryLimitMB, minAdvisedMemoryMB))
	}

	if len(c.WatchList) > maxAdvisedWatchList {
		warnings = append(warnings, fmt.Sprintf("watch-list has %d entries, more than %d", len(c.WatchList), maxAdvisedWatchList))
	}

	return warnings
}

// ParseWatchList parses "addr=label,addr2=label2". Labels may be empty and
// blank entries are skipped.
func ParseWatchList(raw string) (map[string]string, error) {
	entries := make(map[string]string)
	for entry := range strings.SplitSeq(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		address, label, _ := strings.Cut(entry, "=")
		address = strings.TrimSpace(address)
		if address == "" {
			return nil, fmt.Errorf("%w: entry %q has no address", ErrMalformedWatchList, entry)
		}

		entries[address] = strings.TrimSpace(label)
	}

	return entries, nil
}

// ReadWatchListFile reads a YAML mapping of address to label.
//
//	bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4: cold storage
//	1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa: genesis
func ReadWatchListFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watch-list file: %w", err)
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedWatchList, path, err)
	}

	for address := range entries {
		if strings.TrimSpace(address) == "" {
			return nil, fmt.Errorf("%w: %s: empty address", ErrMalformedWatchList, path)
		}
	}

	return entries, nil
}
