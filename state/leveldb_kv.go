package state

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelKV is a KVStore on top of goleveldb. Every write is synced to
// disk before Put returns.
type LevelKV struct {
	db *leveldb.DB
}

// NewLevelKV creates or opens a LevelDB database at path.
func NewLevelKV(path string) (*LevelKV, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelKV{db: db}, nil
}

// NewMemLevelKV is backed by in-memory storage, used in tests.
func NewMemLevelKV() (*LevelKV, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelKV{db: db}, nil
}

func (kv *LevelKV) Get(key string) ([]byte, bool, error) {
	value, err := kv.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (kv *LevelKV) Put(key string, value []byte) error {
	return kv.db.Put([]byte(key), value, &opt.WriteOptions{Sync: true})
}

func (kv *LevelKV) Close() error {
	return kv.db.Close()
}
