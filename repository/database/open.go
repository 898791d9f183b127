package database

import (
	"context"

	"github.com/dapr/kit/logger"
	"github.com/pkg/errors"
)

const (
	BackendMemory = "memory"
	BackendWAL    = "wal"
	BackendRedis  = "redis"
)

// Open builds the Database named by backend.
func Open(ctx context.Context, backend string, walConfig *WriteAheadLogConfig, redisConfig *RedisConfig, log logger.Logger) (Database, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryDatabase(), nil
	case BackendWAL:
		return NewWriteAheadLog(walConfig, log)
	case BackendRedis:
		return NewRedisDatabase(ctx, redisConfig, log)
	}

	return nil, errors.Errorf("unknown storage backend %q", backend)
}
