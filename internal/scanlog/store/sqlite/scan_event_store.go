package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	dbpkg "github.com/BrandonDHaskell/scanlog/internal/db"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

var errEmptyContent = errors.New("scan content is empty")

type ScanEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

// NewScanEventStore reads through db and writes through writer, which must
// wrap the same database.
func NewScanEventStore(db *sql.DB, writer *dbpkg.Worker) *ScanEventStore {
	return &ScanEventStore{db: db, writer: writer}
}

func (s *ScanEventStore) Append(ctx context.Context, ev types.ScanEvent) (types.EventID, error) {
	if strings.TrimSpace(ev.Content) == "" {
		return 0, store.NewStorageError("append", errEmptyContent)
	}
	if ev.Date == "" || ev.Time == "" {
		ev = types.NewScanEvent(ev.Content, ev.OccurredAt)
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO scans(content, scanned_at, scan_date, scan_time)
VALUES (?, ?, ?, ?);
`, ev.Content, ev.ScannedAt(), ev.Date, ev.Time)
		if err != nil {
			return errors.Wrap(err, "insert scan")
		}
		id, err = res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "scan id")
		}
		return nil
	})
	if err != nil {
		return 0, store.NewStorageError("append", err)
	}
	return types.EventID(id), nil
}

// QueryRange reads outside the writer queue. The pool holds a single
// connection, so the read waits for any in-flight write transaction to
// commit and then sees it whole.
func (s *ScanEventStore) QueryRange(ctx context.Context, from, to types.Date) ([]types.Row, error) {
	out := []types.Row{}
	if from.After(to) {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT content, scan_date, scan_time
FROM scans
WHERE scan_date >= ? AND scan_date <= ?
ORDER BY scan_date ASC, scan_time ASC, id ASC;
`, from.String(), to.String())
	if err != nil {
		return nil, store.NewStorageError("query_range", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        types.Row
			scanTime sql.NullString
		)
		if err := rows.Scan(&r.Content, &r.Date, &scanTime); err != nil {
			return nil, store.NewStorageError("query_range", errors.Wrap(err, "scan row"))
		}
		r.Time = scanTime.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("query_range", err)
	}
	return out, nil
}
