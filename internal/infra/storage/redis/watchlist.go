package redis

import (
	"context"
	"fmt"
)

// LoadWatchList reads the watch-list stored as a hash of address to label
// under key. A missing key yields an empty map.
func (c *client) LoadWatchList(ctx context.Context, key string) (map[string]string, error) {
	entries, err := c.conn.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("loading watch-list %q: %w", key, err)
	}

	return entries, nil
}
