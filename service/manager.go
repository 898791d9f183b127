package service

import (
	"context"

	"github.com/Nystya/atomic-kv/domain"
)

// WriteScript issues the writes of one transaction through the batch. A
// non-nil return aborts the transaction.
type WriteScript func(ctx context.Context, batch *Batch) error

type Manager interface {
	RunAtomic(ctx context.Context, script WriteScript) domain.Result
	GetStatus(ctx context.Context, txID string) (domain.Status, error)
}
