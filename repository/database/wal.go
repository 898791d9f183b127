package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Nystya/atomic-kv/domain"
	"github.com/dapr/kit/logger"
	"github.com/pkg/errors"
)

type WriteAheadLogConfig struct {
	Dir         string `yaml:"dir"`
	MaxFileSize int64  `yaml:"maxFileSize"`
	Prefix      string `yaml:"prefix"`
}

// WriteAheadLog is a durable Database made of JSON-lines segment files. Every
// record is fsynced before the call returns and the whole log is replayed
// into memory on open. A batch is written as a single record, so a torn
// trailing line drops the batch as a whole.
type WriteAheadLog struct {
	dir         string
	fileList    []string
	activeFile  string
	nextIndex   int
	maxFileSize int64
	prefix      string

	state map[string]*domain.Entry
	lock  *sync.RWMutex

	logger logger.Logger
}

const KiloByte = 1024

const (
	recordPut = "put"
	walSuffix = "_wal"
)

type walRecord struct {
	Op      string          `json:"op"`
	TxID    string          `json:"tx_id,omitempty"`
	Entries []*domain.Entry `json:"entries"`
}

func NewWriteAheadLog(config *WriteAheadLogConfig, log logger.Logger) (*WriteAheadLog, error) {
	if config == nil || config.Dir == "" {
		return nil, errors.New("wal: directory is required")
	}

	if config.MaxFileSize <= 0 {
		return nil, errors.Errorf("wal: invalid max file size %d", config.MaxFileSize)
	}

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "wal: could not create %s", config.Dir)
	}

	fileList, err := os.ReadDir(config.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "wal: could not list %s", config.Dir)
	}

	fileListNames := make([]string, 0)
	for _, file := range fileList {
		if file.IsDir() || !isSegment(file.Name(), config.Prefix) {
			continue
		}

		fileListNames = append(fileListNames, filepath.Join(config.Dir, file.Name()))
	}

	sort.Slice(fileListNames, func(i, j int) bool {
		return segmentIndex(fileListNames[i]) < segmentIndex(fileListNames[j])
	})

	var activeFile string
	var nextIndex int
	if len(fileListNames) > 0 {
		activeFile = fileListNames[len(fileListNames)-1]
		nextIndex = segmentIndex(activeFile) + 1
	}

	w := &WriteAheadLog{
		dir:         config.Dir,
		fileList:    fileListNames,
		activeFile:  activeFile,
		nextIndex:   nextIndex,
		maxFileSize: config.MaxFileSize * KiloByte,
		prefix:      config.Prefix,
		state:       make(map[string]*domain.Entry),
		lock:        &sync.RWMutex{},
		logger:      log,
	}

	entries, err := w.Recover()
	if err != nil {
		return nil, err
	}

	log.Infof("wal: recovered %d keys from %d segments in %s", len(entries), len(fileListNames), config.Dir)

	return w, nil
}

func isSegment(name string, prefix string) bool {
	if !strings.HasSuffix(name, "_"+prefix+walSuffix) {
		return false
	}

	_, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])

	return err == nil
}

func segmentIndex(path string) int {
	idx, _ := strconv.Atoi(strings.SplitN(filepath.Base(path), "_", 2)[0])

	return idx
}

// Recover rebuilds the in-memory state from the segment files and returns the
// live entries sorted by key. A torn trailing record is truncated away.
func (f *WriteAheadLog) Recover() ([]*domain.Entry, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.state = make(map[string]*domain.Entry)

	for _, file := range f.fileList {
		if err := f.replay(file); err != nil {
			return nil, err
		}
	}

	entryList := make([]*domain.Entry, 0, len(f.state))
	for _, entry := range f.state {
		entryList = append(entryList, entry)
	}

	sort.Slice(entryList, func(i, j int) bool {
		return entryList[i].Key < entryList[j].Key
	})

	return entryList, nil
}

func (f *WriteAheadLog) replay(file string) error {
	fd, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "wal: could not open %s", file)
	}
	defer fd.Close()

	reader := bufio.NewReader(fd)

	var offset int64

	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			if len(line) > 0 {
				f.logger.Warnf("wal: dropping torn record at %s:%d", file, offset)
				if err := os.Truncate(file, offset); err != nil {
					return errors.Wrapf(err, "wal: could not truncate %s", file)
				}
			}
			break
		}

		if err != nil {
			return errors.Wrapf(err, "wal: could not read %s", file)
		}

		record := &walRecord{}
		if err := json.Unmarshal(line, record); err != nil {
			return errors.Wrapf(err, "wal: corrupt record at %s:%d", file, offset)
		}

		f.apply(record)
		offset += int64(len(line))
	}

	return nil
}

func (f *WriteAheadLog) apply(record *walRecord) {
	if record.Op != recordPut {
		return
	}

	for _, entry := range record.Entries {
		f.state[entry.Key] = &domain.Entry{TxID: record.TxID, Key: entry.Key, Value: entry.Value}
	}
}

func (f *WriteAheadLog) Put(ctx context.Context, key string, value interface{}) error {
	data, err := EncodeValue(key, value)
	if err != nil {
		return err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	return f.write(&walRecord{
		Op:      recordPut,
		Entries: []*domain.Entry{{Key: key, Value: data}},
	})
}

func (f *WriteAheadLog) PutBatch(ctx context.Context, txID string, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	return f.write(&walRecord{
		Op:      recordPut,
		TxID:    txID,
		Entries: entries,
	})
}

func (f *WriteAheadLog) write(record *walRecord) error {
	if f.activeFile == "" {
		if err := f.CreateNextFile(); err != nil {
			return err
		}
	}

	stat, err := os.Stat(f.activeFile)
	if err != nil {
		return errors.Wrapf(err, "wal: could not stat %s", f.activeFile)
	}

	size := stat.Size()

	// Check if we should go to next wal file
	if size >= f.maxFileSize {
		if err = f.CreateNextFile(); err != nil {
			return err
		}
		size = 0
	}

	marshal, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "wal: could not encode record")
	}

	file, err := openSegment(f.activeFile)
	if err != nil {
		return errors.Wrapf(err, "wal: could not open %s", f.activeFile)
	}

	defer file.Close()

	if err := appendLine(file, string(marshal)+"\n"); err != nil {
		// Cut the partial record so the next append starts on a clean line.
		if truncErr := os.Truncate(f.activeFile, size); truncErr != nil {
			f.logger.Errorf("wal: could not truncate %s after failed append: %v", f.activeFile, truncErr)
		}
		return errors.Wrapf(err, "wal: could not append to %s", f.activeFile)
	}

	f.apply(record)

	return nil
}

type segmentFile interface {
	WriteString(s string) (int, error)
	Sync() error
	Close() error
}

var openSegment = func(path string) (segmentFile, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}

	return file, nil
}

func appendLine(file segmentFile, jsonData string) error {
	curLen := 0

	for curLen < len(jsonData) {
		writtenLen, err := file.WriteString(jsonData[curLen:])
		if err != nil {
			return err
		}

		curLen += writtenLen
	}

	return file.Sync()
}

// syncDir makes file creations and removals in dir durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}

func (f *WriteAheadLog) CreateNextFile() error {
	create, err := os.Create(filepath.Join(f.dir, fmt.Sprintf("%v_%v%v", f.nextIndex, f.prefix, walSuffix)))
	if err != nil {
		return errors.Wrap(err, "wal: could not create segment")
	}
	f.activeFile = create.Name()
	f.fileList = append(f.fileList, f.activeFile)
	f.nextIndex++

	f.logger.Debugf("wal: opened segment %s", f.activeFile)

	return create.Close()
}

func (f *WriteAheadLog) Get(ctx context.Context, key string) (*domain.Entry, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	val, ok := f.state[key]
	if !ok {
		return nil, &domain.NotFoundError{Key: key}
	}

	entry := *val

	return &entry, nil
}

// DeleteAll removes every segment file, leaving an empty log.
func (f *WriteAheadLog) DeleteAll(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, file := range f.fileList {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "wal: could not remove %s", file)
		}
	}

	if err := syncDir(f.dir); err != nil {
		return errors.Wrapf(err, "wal: could not sync %s", f.dir)
	}

	f.fileList = nil
	f.activeFile = ""
	f.nextIndex = 0
	f.state = make(map[string]*domain.Entry)

	return nil
}

// Segments returns the segment files currently making up the log.
func (f *WriteAheadLog) Segments() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return append([]string(nil), f.fileList...)
}
