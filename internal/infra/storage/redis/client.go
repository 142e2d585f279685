// Package redis keeps the watch-list in a Redis hash and appends watcher
// notifications to a Redis stream.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// commands is the part of *redis.Client the package uses.
type commands interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

type client struct {
	conn commands
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and checks the connection with a PING.
func NewClient(ctx context.Context, addr, username, password string, db int) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, err
	}

	return &client{
		conn: conn,
	}, nil
}
