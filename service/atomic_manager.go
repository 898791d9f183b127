package service

import (
	"context"
	"sync"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/dapr/kit/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultHistorySize = 1024

// AtomicManager runs write scripts against a Database with all-or-nothing
// visibility. Writes are buffered per transaction and applied only when the
// script settles without a failure signal.
type AtomicManager struct {
	db database.Database

	// Outcome of finished transactions, oldest evicted first.
	txCache     *database.MemoryDatabase
	history     []string
	historySize int
	historyLock *sync.Mutex

	// Serializes the apply phase so committing transactions never interleave.
	applyLock *sync.Mutex

	logger logger.Logger
}

type transaction struct {
	id    string
	state domain.Status
	batch *Batch
}

func NewAtomicManager(db database.Database, historySize int, log logger.Logger) *AtomicManager {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}

	return &AtomicManager{
		db:          db,
		txCache:     database.NewMemoryDatabase(),
		history:     make([]string, 0, historySize),
		historySize: historySize,
		historyLock: &sync.Mutex{},
		applyLock:   &sync.Mutex{},
		logger:      log,
	}
}

func (m *AtomicManager) RunAtomic(ctx context.Context, script WriteScript) domain.Result {
	tx := &transaction{
		id:    uuid.New().String(),
		state: domain.Open,
		batch: newBatch(),
	}

	m.logger.Debugf("tx %s: open", tx.id)

	err := m.execute(ctx, tx, script)

	writes, batchErr := tx.batch.seal()
	if err == nil {
		err = batchErr
	}

	if err != nil {
		return m.abort(ctx, tx, err)
	}

	tx.state = domain.Committing

	if err := m.apply(ctx, tx.id, writes); err != nil {
		return m.abort(ctx, tx, errors.Wrap(err, "apply"))
	}

	tx.state = domain.Committed
	m.record(ctx, tx)

	m.logger.Debugf("tx %s: committed %d writes", tx.id, len(writes))

	return domain.Result{
		TxID:   tx.id,
		Status: domain.Committed,
		Writes: len(writes),
	}
}

// execute runs the script, turning a returned error or a panic into a fault.
func (m *AtomicManager) execute(ctx context.Context, tx *transaction, script WriteScript) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ScriptFaultError{Err: errors.Errorf("panic: %v", r)}
		}
	}()

	if scriptErr := script(ctx, tx.batch); scriptErr != nil {
		if domain.IsInvalidValue(scriptErr) || domain.IsScriptFault(scriptErr) {
			return scriptErr
		}

		return &domain.ScriptFaultError{Err: scriptErr}
	}

	return nil
}

func (m *AtomicManager) abort(ctx context.Context, tx *transaction, reason error) domain.Result {
	pending := tx.batch.Len()
	tx.batch.discard()
	tx.state = domain.Aborted
	m.record(ctx, tx)

	m.logger.Infof("tx %s: aborted, discarded %d writes: %v", tx.id, pending, reason)

	return domain.Result{
		TxID:   tx.id,
		Status: domain.Aborted,
		Reason: reason,
	}
}

func (m *AtomicManager) apply(ctx context.Context, txID string, writes []*domain.Entry) error {
	m.applyLock.Lock()
	defer m.applyLock.Unlock()

	if batcher, ok := m.db.(database.Batcher); ok {
		return batcher.PutBatch(ctx, txID, writes)
	}

	for i, entry := range writes {
		if err := m.db.Put(ctx, entry.Key, entry.Value); err != nil {
			m.logger.Errorf("tx %s: backend failed after %d of %d writes: %v", txID, i, len(writes), err)
			return err
		}
	}

	return nil
}

func (m *AtomicManager) record(ctx context.Context, tx *transaction) {
	m.historyLock.Lock()
	defer m.historyLock.Unlock()

	if len(m.history) >= m.historySize {
		m.txCache.Delete(ctx, m.history[0])
		m.history = m.history[1:]
	}

	m.history = append(m.history, tx.id)
	_ = m.txCache.Put(ctx, tx.id, tx.state.String())
}

func (m *AtomicManager) GetStatus(ctx context.Context, txID string) (domain.Status, error) {
	entry, err := m.txCache.Get(ctx, txID)
	if err != nil {
		return domain.Open, err
	}

	return domain.ParseStatus(entry.Value)
}
