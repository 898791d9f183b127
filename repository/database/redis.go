package database

import (
	"context"
	"time"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/dapr/kit/logger"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	defaultRedisPrefix     = "atomickv:"
	defaultRedisMaxRetries = 3
	defaultScanCount       = 100
)

type RedisConfig struct {
	Host        string        `yaml:"host"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"maxRetries"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
	Prefix      string        `yaml:"prefix"`
}

// RedisDatabase stores every key under a namespace prefix so DeleteAll only
// erases keys owned by this store.
type RedisDatabase struct {
	client redis.UniversalClient
	prefix string

	logger logger.Logger
}

func NewRedisDatabase(ctx context.Context, config *RedisConfig, log logger.Logger) (*RedisDatabase, error) {
	if config == nil || config.Host == "" {
		return nil, errors.New("redis: host is required")
	}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultRedisMaxRetries
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:        config.Host,
		Password:    config.Password,
		DB:          config.DB,
		MaxRetries:  maxRetries,
		DialTimeout: config.DialTimeout,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis: error connecting to redis at %s", config.Host)
	}

	log.Infof("redis: connected to %s with key prefix %q", config.Host, prefix)

	return &RedisDatabase{
		client: client,
		prefix: prefix,
		logger: log,
	}, nil
}

func (r *RedisDatabase) key(key string) string {
	return r.prefix + key
}

func (r *RedisDatabase) Put(ctx context.Context, key string, value interface{}) error {
	data, err := EncodeValue(key, value)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(key), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis: could not set %s", key)
	}

	return nil
}

// PutBatch applies the entries inside a MULTI/EXEC block.
func (r *RedisDatabase) PutBatch(ctx context.Context, txID string, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, entry := range entries {
			pipe.Set(ctx, r.key(entry.Key), entry.Value, 0)
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "redis: could not apply batch %s", txID)
	}

	return nil
}

func (r *RedisDatabase) Get(ctx context.Context, key string) (*domain.Entry, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return nil, &domain.NotFoundError{Key: key}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "redis: could not get %s", key)
	}

	return &domain.Entry{Key: key, Value: val}, nil
}

func (r *RedisDatabase) DeleteAll(ctx context.Context) error {
	var cursor uint64

	deleted := 0

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", defaultScanCount).Result()
		if err != nil {
			return errors.Wrap(err, "redis: could not scan keys")
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "redis: could not delete keys")
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Debugf("redis: deleted %d keys under %q", deleted, r.prefix)

	return nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}
