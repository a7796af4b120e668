package state

import (
	"database/sql"

	"github.com/TEENet-io/xmr-bridge-go/database"
)

// table stores whole values under logical keys
var kvTable = `CREATE TABLE IF NOT EXISTS kv (
	key VARCHAR(32) PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
);`

type SQLiteKV struct {
	db        *sql.DB
	ownsDB    bool
	stmtCache *database.StmtCache
}

// NewSQLiteKV creates the kv table in an already opened database. The
// caller keeps ownership of db.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(kvTable); err != nil {
		return nil, err
	}

	return &SQLiteKV{
		db:        db,
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func NewSQLiteKVFromPath(path string) (*SQLiteKV, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	kv, err := NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	kv.ownsDB = true

	return kv, nil
}

func (kv *SQLiteKV) Get(key string) ([]byte, bool, error) {
	query := `SELECT value FROM kv WHERE key = ?`
	stmt, err := kv.stmtCache.Prepare(query)
	if err != nil {
		return nil, false, err
	}

	var value []byte
	if err := stmt.QueryRow(key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	return value, true, nil
}

// Put is a single INSERT OR REPLACE statement, which sqlite runs in its
// own transaction.
func (kv *SQLiteKV) Put(key string, value []byte) error {
	query := `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`
	stmt, err := kv.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	if value == nil {
		value = []byte{}
	}
	_, err = stmt.Exec(key, value)
	return err
}

func (kv *SQLiteKV) Close() error {
	kv.stmtCache.Clear()
	if kv.ownsDB {
		return kv.db.Close()
	}
	return nil
}
