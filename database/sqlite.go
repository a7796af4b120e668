package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite = "sqlite3"
	MemoryDSN    = ":memory:"
)

// OpenSQLite opens a sqlite3 database file with settings suited to a
// single-writer process that must survive crashes: WAL journal, full
// fsync and a busy timeout for concurrent readers (e.g. the reporter).
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != MemoryDSN && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}

	// an in-memory database lives as long as its connection
	if path == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
