package service

import (
	"context"
	"sync"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/agrea/ptr"
	"github.com/dapr/kit/logger"
	"github.com/pkg/errors"
)

var ErrSimulatedCrash = errors.New("simulated crash")

var DefaultReadKeys = []string{"a", "b"}

type TransactionStore struct {
	db      database.Database
	manager Manager

	logger logger.Logger
}

func NewTransactionStore(db database.Database, manager Manager, log logger.Logger) *TransactionStore {
	return &TransactionStore{
		db:      db,
		manager: manager,
		logger:  log,
	}
}

func simulatedCrash() error {
	return &domain.ScriptFaultError{Err: ErrSimulatedCrash}
}

// WriteAtomic buffers a=1 and b=2, then crashes. The transaction aborts and
// storage is left untouched.
func (t *TransactionStore) WriteAtomic(ctx context.Context) domain.Result {
	return t.manager.RunAtomic(ctx, func(ctx context.Context, batch *Batch) error {
		if err := batch.Put("a", "1"); err != nil {
			return err
		}

		if err := batch.Put("b", "2"); err != nil {
			return err
		}

		return simulatedCrash()
	})
}

// WriteNonAtomic dispatches a=1 and b=2 on their own goroutines and crashes
// without waiting for them. Nothing is rolled back: whichever writes the
// backend accepted stay. The call returns the crash once the dispatched
// writes have settled.
func (t *TransactionStore) WriteNonAtomic(ctx context.Context) error {
	writes := []KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}

	wg := &sync.WaitGroup{}

	for _, write := range writes {
		wg.Add(1)

		go func(write KeyValue) {
			defer wg.Done()

			if err := t.db.Put(ctx, write.Key, write.Value); err != nil {
				t.logger.Warnf("non-atomic: write of %s failed: %v", write.Key, err)
			}
		}(write)
	}

	fault := simulatedCrash()

	wg.Wait()

	return fault
}

// WriteAwaited writes a=1 then b=2 one after the other and crashes. Both
// writes stay visible.
func (t *TransactionStore) WriteAwaited(ctx context.Context) error {
	if err := t.db.Put(ctx, "a", "1"); err != nil {
		return err
	}

	if err := t.db.Put(ctx, "b", "2"); err != nil {
		return err
	}

	return simulatedCrash()
}

// Transact runs the given writes in order through the transaction manager.
// When fail is set the script crashes after issuing them.
func (t *TransactionStore) Transact(ctx context.Context, writes []KeyValue, fail bool) domain.Result {
	return t.manager.RunAtomic(ctx, func(ctx context.Context, batch *Batch) error {
		for _, write := range writes {
			if err := batch.Put(write.Key, write.Value); err != nil {
				return err
			}
		}

		if fail {
			return simulatedCrash()
		}

		return nil
	})
}

// Read returns the value of every key, nil when absent. With no keys given
// the default demo keys are read.
func (t *TransactionStore) Read(ctx context.Context, keys []string) (map[string]*string, error) {
	if len(keys) == 0 {
		keys = DefaultReadKeys
	}

	result := make(map[string]*string, len(keys))

	for _, key := range keys {
		entry, err := t.db.Get(ctx, key)
		if domain.IsNotFound(err) {
			result[key] = nil
			continue
		}

		if err != nil {
			return nil, err
		}

		result[key] = ptr.String(entry.Value)
	}

	return result, nil
}

func (t *TransactionStore) Reset(ctx context.Context) error {
	if err := t.db.DeleteAll(ctx); err != nil {
		return err
	}

	t.logger.Info("storage reset")

	return nil
}

func (t *TransactionStore) GetStatus(ctx context.Context, txID string) (domain.Status, error) {
	return t.manager.GetStatus(ctx, txID)
}
