package state

import (
	"errors"
	"fmt"
)

// Logical keys of the records kept by the bridge. Each key holds one
// whole value that is replaced on every write.
const (
	KeyPending   = "pending"
	KeyProcessed = "processed"
	KeyWatermark = "watermark"
)

const (
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// KVStore is the durable backend of the state. Put must replace the
// value of a key atomically: after a crash a reader sees either the
// previous value or the new one, never a mixture.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Close() error
}

// OpenKVStore opens the backend named by kind at path.
func OpenKVStore(kind, path string) (KVStore, error) {
	switch kind {
	case BackendSQLite, "":
		return NewSQLiteKVFromPath(path)
	case BackendLevelDB:
		return NewLevelKV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, kind)
	}
}
