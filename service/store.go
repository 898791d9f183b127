package service

import (
	"context"

	"github.com/Nystya/atomic-kv/domain"
)

type KeyValue struct {
	Key   string
	Value interface{}
}

// Store is the operation set exposed over the wire. WriteNonAtomic and
// WriteAwaited deliberately bypass the transaction manager.
type Store interface {
	WriteAtomic(ctx context.Context) domain.Result
	WriteNonAtomic(ctx context.Context) error
	WriteAwaited(ctx context.Context) error
	Transact(ctx context.Context, writes []KeyValue, fail bool) domain.Result

	Read(ctx context.Context, keys []string) (map[string]*string, error)
	Reset(ctx context.Context) error
	GetStatus(ctx context.Context, txID string) (domain.Status, error)
}
