package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/config"
	"github.com/biamino/biamino-backend/internal/store"
	"github.com/biamino/biamino-backend/internal/store/kv"
	"github.com/biamino/biamino-backend/internal/store/postgres"
)

// Stores bundles the active store realization with the Redis client that
// session snapshots always use.
type Stores struct {
	Backend string
	Store   store.Store
	Redis   *redis.Client
}

// OpenStore connects Redis and, depending on cfg.Store.Backend, either
// layers the kv store on that client or opens Postgres and migrates it.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	rdb, err := OpenRedis(ctx, RedisOptions{Config: cfg.Redis})
	if err != nil {
		return nil, err
	}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		log.Info().Str("addr", cfg.Redis.Addr).Str("prefix", cfg.Redis.Prefix).Msg("using redis store")
		return &Stores{
			Backend: cfg.Store.Backend,
			Store:   kv.New(rdb, kv.WithPrefix(cfg.Redis.Prefix)),
			Redis:   rdb,
		}, nil

	case config.BackendPostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      postgres.DSN(&cfg.Database),
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		st := postgres.FromPool(pool)
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, st.DB()); err != nil {
				_ = st.Close()
				_ = rdb.Close()
				return nil, err
			}
			log.Info().Msg("database migrations applied")
		}
		log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("using postgres store")
		return &Stores{Backend: cfg.Store.Backend, Store: st, Redis: rdb}, nil

	default:
		_ = rdb.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close releases the store and the Redis client. The kv store owns the
// client, so it is closed only once.
func (s *Stores) Close() error {
	err := s.Store.Close()
	if s.Backend != config.BackendRedis {
		err = errors.Join(err, s.Redis.Close())
	}
	return err
}
