package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/BrandonDHaskell/scanlog/internal/db"
)

// openTestDB gives each test a private scans database: in memory, migrated
// with the embedded migrations, on the single-connection pool db.Open uses.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Named after the test so no two tests see each other's scans.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// One connection: appends and range reads queue on it, as in db.Open.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("ping test db: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter is the append path's single writer. Registered after
// openTestDB, so it drains before the database goes away.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}
