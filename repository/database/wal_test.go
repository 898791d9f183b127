package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/pkg/errors"
)

func testWAL(t *testing.T, dir string, maxFileSize int64) *WriteAheadLog {
	t.Helper()

	wal, err := NewWriteAheadLog(&WriteAheadLogConfig{
		Dir:         dir,
		MaxFileSize: maxFileSize,
		Prefix:      "5000",
	}, testLogger)
	if err != nil {
		t.Fatalf("failed to open WAL: %v", err)
	}

	return wal
}

func TestWriteAheadLog(t *testing.T) {
	testDatabaseContract(t, testWAL(t, t.TempDir(), 100))
}

func TestWriteAheadLogRecover(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	wal := testWAL(t, dir, 100)

	if err := wal.Put(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}

	err := wal.PutBatch(ctx, "tx-1", []*domain.Entry{{Key: "b", Value: "2"}, {Key: "a", Value: "3"}})
	if err != nil {
		t.Fatal(err)
	}

	reopened := testWAL(t, dir, 100)

	entries, err := reopened.Recover()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Key != "a" || entries[0].Value != "3" || entries[0].TxID != "tx-1" {
		t.Errorf("unexpected entry %+v", entries[0])
	}

	if entries[1].Key != "b" || entries[1].Value != "2" {
		t.Errorf("unexpected entry %+v", entries[1])
	}
}

func TestWriteAheadLogDropsTornBatch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	wal := testWAL(t, dir, 100)

	if err := wal.Put(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}

	segments := wal.Segments()
	if len(segments) != 1 {
		t.Fatalf("expected one segment, got %v", segments)
	}

	// A batch record cut short by a crash.
	f, err := os.OpenFile(segments[0], os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"op":"put","tx_id":"tx-2","entries":[{"key":"b","value":"2"},{"key":"c"`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	reopened := testWAL(t, dir, 100)

	assertMissing := func(db Database) {
		t.Helper()
		for _, key := range []string{"b", "c"} {
			if _, err := db.Get(ctx, key); !domain.IsNotFound(err) {
				t.Errorf("expected torn batch key %s absent, got %v", key, err)
			}
		}
	}

	assertMissing(reopened)

	if entry, err := reopened.Get(ctx, "a"); err != nil || entry.Value != "1" {
		t.Errorf("expected a=1 to survive, got %+v (err %v)", entry, err)
	}

	// Appending after recovery must not glue onto the torn tail.
	if err := reopened.Put(ctx, "d", "4"); err != nil {
		t.Fatal(err)
	}

	again := testWAL(t, dir, 100)
	assertMissing(again)

	if entry, err := again.Get(ctx, "d"); err != nil || entry.Value != "4" {
		t.Errorf("expected d=4, got %+v (err %v)", entry, err)
	}
}

func TestWriteAheadLogCorruptRecord(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "0_5000_wal")
	if err := os.WriteFile(path, []byte("not json\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	_, err := NewWriteAheadLog(&WriteAheadLogConfig{Dir: dir, MaxFileSize: 100, Prefix: "5000"}, testLogger)
	if err == nil || !strings.Contains(err.Error(), "corrupt record") {
		t.Errorf("expected corrupt record error, got %v", err)
	}
}

func TestWriteAheadLogRotatesSegments(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	wal := testWAL(t, dir, 1)

	value := strings.Repeat("x", 600)
	for i := 0; i < 6; i++ {
		if err := wal.Put(ctx, fmt.Sprintf("k%d", i), value); err != nil {
			t.Fatal(err)
		}
	}

	segments := wal.Segments()
	if len(segments) < 3 {
		t.Fatalf("expected rotation, got %d segments", len(segments))
	}

	// Segments from another prefix are ignored.
	if err := os.WriteFile(filepath.Join(dir, "0_other_wal"), []byte("garbage\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	reopened := testWAL(t, dir, 1)
	if len(reopened.Segments()) != len(segments) {
		t.Errorf("expected %d segments after reopen, got %d", len(segments), len(reopened.Segments()))
	}

	for i := 0; i < 6; i++ {
		if _, err := reopened.Get(ctx, fmt.Sprintf("k%d", i)); err != nil {
			t.Errorf("k%d lost across rotation: %v", i, err)
		}
	}

	if err := reopened.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}

	for _, segment := range segments {
		if _, err := os.Stat(segment); !os.IsNotExist(err) {
			t.Errorf("expected %s removed, got %v", segment, err)
		}
	}

	empty := testWAL(t, dir, 1)
	if _, err := empty.Get(ctx, "k0"); !domain.IsNotFound(err) {
		t.Errorf("expected empty log after DeleteAll, got %v", err)
	}
}

func TestWriteAheadLogConfigValidation(t *testing.T) {
	if _, err := NewWriteAheadLog(&WriteAheadLogConfig{MaxFileSize: 1}, testLogger); err == nil {
		t.Error("expected missing directory to fail")
	}

	if _, err := NewWriteAheadLog(&WriteAheadLogConfig{Dir: t.TempDir()}, testLogger); err == nil {
		t.Error("expected zero max file size to fail")
	}
}

// shortWriteFile writes half of the first record it is given, then fails.
type shortWriteFile struct {
	*os.File
}

func (s *shortWriteFile) WriteString(data string) (int, error) {
	n, _ := s.File.WriteString(data[:len(data)/2])
	return n, errors.New("disk full")
}

func TestWriteAheadLogFailedAppendLeavesCleanTail(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	wal := testWAL(t, dir, 100)

	if err := wal.Put(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}

	open := openSegment
	defer func() { openSegment = open }()

	openSegment = func(path string) (segmentFile, error) {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		return &shortWriteFile{File: file}, nil
	}

	if err := wal.Put(ctx, "b", "2"); err == nil {
		t.Fatal("expected failed append to return an error")
	}

	openSegment = open

	if _, err := wal.Get(ctx, "b"); !domain.IsNotFound(err) {
		t.Errorf("failed append must not be visible, got %v", err)
	}

	if err := wal.Put(ctx, "c", "3"); err != nil {
		t.Fatal(err)
	}

	reopened := testWAL(t, dir, 100)

	for key, want := range map[string]string{"a": "1", "c": "3"} {
		if entry, err := reopened.Get(ctx, key); err != nil || entry.Value != want {
			t.Errorf("expected %s=%s after reopen, got %+v (err %v)", key, want, entry, err)
		}
	}

	if _, err := reopened.Get(ctx, "b"); !domain.IsNotFound(err) {
		t.Errorf("expected b absent after reopen, got %v", err)
	}
}

func TestSyncDir(t *testing.T) {
	if err := syncDir(t.TempDir()); err != nil {
		t.Errorf("sync of existing directory: %v", err)
	}

	if err := syncDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected sync of missing directory to fail")
	}
}
