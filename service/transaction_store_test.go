package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/pkg/errors"
)

func newTestStore(t *testing.T, db database.Database) *TransactionStore {
	t.Helper()

	return NewTransactionStore(db, NewAtomicManager(db, 0, testLogger), testLogger)
}

func readAll(t *testing.T, store *TransactionStore, keys ...string) map[string]*string {
	t.Helper()

	values, err := store.Read(context.Background(), keys)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	return values
}

func TestWriteAtomicLeavesStorageUnchanged(t *testing.T) {
	db := database.NewMemoryDatabase()
	store := newTestStore(t, db)
	ctx := context.Background()

	result := store.WriteAtomic(ctx)

	if result.Committed() {
		t.Fatal("write-atomic must never commit")
	}

	if !errors.Is(result.Reason, ErrSimulatedCrash) {
		t.Errorf("expected simulated crash, got %v", result.Reason)
	}

	for key, value := range readAll(t, store, "a", "b") {
		if value != nil {
			t.Errorf("expected %s absent, got %q", key, *value)
		}
	}

	if s, err := store.GetStatus(ctx, result.TxID); err != nil || s != domain.Aborted {
		t.Errorf("expected aborted status, got %v (err %v)", s, err)
	}
}

func TestTransactWithInvalidValue(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())

	result := store.Transact(context.Background(), []KeyValue{
		{Key: "a", Value: "1"},
		{Key: "b", Value: make(chan struct{})},
		{Key: "c", Value: "2"},
	}, false)

	if result.Status != domain.Aborted || !domain.IsInvalidValue(result.Reason) {
		t.Fatalf("expected abort on invalid value, got %v: %v", result.Status, result.Reason)
	}

	for key, value := range readAll(t, store, "a", "b", "c") {
		if value != nil {
			t.Errorf("expected %s absent, got %q", key, *value)
		}
	}
}

func TestTransact(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())
	ctx := context.Background()

	writes := []KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}

	if result := store.Transact(ctx, writes, true); result.Committed() {
		t.Fatal("expected failing transaction to abort")
	}

	if values := readAll(t, store, "a", "b"); values["a"] != nil || values["b"] != nil {
		t.Fatalf("aborted transaction left writes behind: %v", values)
	}

	result := store.Transact(ctx, writes, false)
	if !result.Committed() {
		t.Fatalf("expected commit, got %v", result.Reason)
	}

	values := readAll(t, store, "a", "b")
	if values["a"] == nil || *values["a"] != "1" || values["b"] == nil || *values["b"] != "2" {
		t.Errorf("expected a=1 b=2 after commit, got %v", values)
	}
}

func TestWriteAwaitedKeepsPriorWrites(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())

	err := store.WriteAwaited(context.Background())
	if !domain.IsScriptFault(err) || !errors.Is(err, ErrSimulatedCrash) {
		t.Fatalf("expected simulated crash, got %v", err)
	}

	values := readAll(t, store, "a", "b")
	if values["a"] == nil || *values["a"] != "1" {
		t.Errorf("expected a=1, got %v", values["a"])
	}
	if values["b"] == nil || *values["b"] != "2" {
		t.Errorf("expected b=2, got %v", values["b"])
	}
}

// flakyDatabase fails each put independently with probability one half.
type flakyDatabase struct {
	mem *database.MemoryDatabase

	lock *sync.Mutex
	rnd  *rand.Rand
}

func (f *flakyDatabase) Put(ctx context.Context, key string, value interface{}) error {
	f.lock.Lock()
	fail := f.rnd.Intn(2) == 0
	f.lock.Unlock()

	if fail {
		return errors.Errorf("injected failure writing %s", key)
	}

	return f.mem.Put(ctx, key, value)
}

func (f *flakyDatabase) Get(ctx context.Context, key string) (*domain.Entry, error) {
	return f.mem.Get(ctx, key)
}

func (f *flakyDatabase) DeleteAll(ctx context.Context) error {
	return f.mem.DeleteAll(ctx)
}

func TestWriteNonAtomicIsNotAllOrNothing(t *testing.T) {
	db := &flakyDatabase{
		mem:  database.NewMemoryDatabase(),
		lock: &sync.Mutex{},
		rnd:  rand.New(rand.NewSource(1)),
	}
	store := newTestStore(t, db)
	ctx := context.Background()

	seen := make(map[[2]bool]int)

	for i := 0; i < 400; i++ {
		if err := store.Reset(ctx); err != nil {
			t.Fatal(err)
		}

		err := store.WriteNonAtomic(ctx)
		if !errors.Is(err, ErrSimulatedCrash) {
			t.Fatalf("expected simulated crash, got %v", err)
		}

		values := readAll(t, store, "a", "b")
		if values["a"] != nil && *values["a"] != "1" {
			t.Fatalf("unexpected a=%q", *values["a"])
		}
		if values["b"] != nil && *values["b"] != "2" {
			t.Fatalf("unexpected b=%q", *values["b"])
		}

		seen[[2]bool{values["a"] != nil, values["b"] != nil}]++
	}

	if seen[[2]bool{true, false}] == 0 {
		t.Errorf("never observed a without b: %v", seen)
	}
	if seen[[2]bool{false, true}] == 0 {
		t.Errorf("never observed b without a: %v", seen)
	}
}

func TestWriteNonAtomicDoesNotRollBack(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())

	err := store.WriteNonAtomic(context.Background())
	if !domain.IsScriptFault(err) || !errors.Is(err, ErrSimulatedCrash) {
		t.Fatalf("expected simulated crash, got %v", err)
	}

	values := readAll(t, store, "a", "b")
	if values["a"] == nil || *values["a"] != "1" || values["b"] == nil || *values["b"] != "2" {
		t.Errorf("expected landed writes to survive the crash, got %v", values)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())
	ctx := context.Background()

	if err := store.WriteAwaited(ctx); err == nil {
		t.Fatal("expected write-awaited to fault")
	}

	for i := 0; i < 2; i++ {
		if err := store.Reset(ctx); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}

		values := readAll(t, store, "a", "b")
		if len(values) != 2 || values["a"] != nil || values["b"] != nil {
			t.Errorf("expected {a: absent, b: absent}, got %v", values)
		}
	}
}

func TestReadDefaultsToDemoKeys(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())

	values := readAll(t, store)
	if len(values) != len(DefaultReadKeys) {
		t.Fatalf("expected %d keys, got %v", len(DefaultReadKeys), values)
	}

	for _, key := range DefaultReadKeys {
		if v, ok := values[key]; !ok || v != nil {
			t.Errorf("expected %s absent, got %v", key, v)
		}
	}
}

func TestTransactWithNestedMapValue(t *testing.T) {
	store := newTestStore(t, database.NewMemoryDatabase())

	value := map[string]interface{}{
		"x": 1.0,
		"y": map[string]interface{}{"z": []interface{}{"w", nil}},
	}

	result := store.Transact(context.Background(), []KeyValue{{Key: "obj", Value: value}}, false)
	if !result.Committed() {
		t.Fatalf("expected commit, got %v: %v", result.Status, result.Reason)
	}

	values := readAll(t, store, "obj")
	if values["obj"] == nil || *values["obj"] != `{"x":1,"y":{"z":["w",null]}}` {
		t.Errorf("unexpected stored object %v", values["obj"])
	}
}
