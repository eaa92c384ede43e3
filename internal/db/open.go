package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path string // e.g. "./data/barcodes.db"; ":memory:" for a throwaway database
}

// ErrInitialization marks failures that leave the store unusable at startup.
// The pipeline must not start when Open returns it.
var ErrInitialization = errors.New("scan store initialization failed")

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg.Path = "./data/barcodes.db"
	}

	var dsn string
	if cfg.Path == ":memory:" {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	} else {
		// Ensure DB parent directory exists.
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "mkdir db dir"), ErrInitialization)
		}

		// modernc.org/sqlite DSN with per-connection PRAGMAs:
		// - WAL so export reads do not block the scan writer
		// - synchronous FULL: an append is on disk once it returns
		// - busy_timeout to ride out a concurrent external reader
		dsn = "file:" + cfg.Path +
			"?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "sql.Open"), ErrInitialization)
	}

	// Single connection: writes are serialized by the Worker and reads queue
	// behind the current transaction, so a reader never sees half a commit.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Mark(errors.Wrap(err, "db ping"), ErrInitialization)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Mark(err, ErrInitialization)
	}

	return db, nil
}
