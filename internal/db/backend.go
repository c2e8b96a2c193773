package db

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/clanhall/internal/config"
	"infinite-experiment/clanhall/internal/docstore"
)

// OpenBackend builds the document store backend selected by STORE_BACKEND.
// redisClient is only used by the redis backend and may be nil otherwise.
func OpenBackend(specs *config.EnvSpec, redisClient *redis.Client) (docstore.Backend, error) {
	switch specs.StoreBackend {
	case config.BackendMemory:
		return docstore.NewMemoryBackend(), nil
	case config.BackendFile:
		return docstore.NewFileBackend(specs.DataDir)
	case config.BackendSQLite, config.BackendPostgres:
		orm, err := OpenORM(specs.StoreBackend, specs.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return docstore.NewSQLBackend(orm)
	case config.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis backend selected without a redis client")
		}
		return docstore.NewRedisBackend(redisClient, specs.RedisPrefix+":docstore:"), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", specs.StoreBackend)
	}
}
