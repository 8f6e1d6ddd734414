package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/fuel-data-etl/pkg/client"
	"github.com/Sternrassler/fuel-data-etl/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// newClient builds the HTTP client from cfg. The returned close function
// releases the Redis connection, if any.
func newClient(ctx context.Context, cfg config.Config) (*client.Client, func(), error) {
	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.Timeout = cfg.Timeout()
	clientCfg.RequestsPerSecond = cfg.RequestsPerSecond
	clientCfg.CacheTTL = cfg.CacheTTL()

	closeFn := func() {}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", config.EnvRedisURL, err)
		}
		rdb := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}

		log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Response cache enabled")
		clientCfg.Redis = rdb
		closeFn = func() { rdb.Close() }
	}

	c, err := client.New(clientCfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}
