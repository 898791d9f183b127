package database

import (
	"context"

	"github.com/Nystya/atomic-kv/domain"
)

// Database is a durable mapping from string keys to string values. A sequence
// of calls against it is not atomic: each call lands on its own.
type Database interface {
	Put(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) (*domain.Entry, error)
	DeleteAll(ctx context.Context) error
}

// Batcher is implemented by databases that can apply a batch of already
// encoded entries as a single unit.
type Batcher interface {
	PutBatch(ctx context.Context, txID string, entries []*domain.Entry) error
}
