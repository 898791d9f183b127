package service

import (
	"sync"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/pkg/errors"
)

var ErrBatchSealed = errors.New("write batch is sealed")

// Batch collects the writes of one transaction in insertion order. Nothing
// recorded here is visible to readers until the transaction commits.
type Batch struct {
	lock *sync.Mutex

	writes []*domain.Entry
	err    error
	sealed bool
}

func newBatch() *Batch {
	return &Batch{
		lock:   &sync.Mutex{},
		writes: make([]*domain.Entry, 0),
	}
}

// Put validates value and records the write. An invalid value poisons the
// batch: the transaction aborts even if the caller drops the returned error.
func (b *Batch) Put(key string, value interface{}) error {
	data, encodeErr := database.EncodeValue(key, value)

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.sealed {
		return ErrBatchSealed
	}

	if encodeErr != nil {
		if b.err == nil {
			b.err = encodeErr
		}
		return encodeErr
	}

	b.writes = append(b.writes, &domain.Entry{Key: key, Value: data})

	return nil
}

func (b *Batch) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return len(b.writes)
}

// seal stops further writes and returns the recorded entries together with
// the first validation failure, if any.
func (b *Batch) seal() ([]*domain.Entry, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.sealed = true

	return b.writes, b.err
}

// discard drops every recorded write.
func (b *Batch) discard() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.sealed = true
	b.writes = nil
}
