package store

//go:generate mockgen -source=store.go -destination=mock/mock_store.go -package=mock

import (
	"context"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// ScanEventStore is the append-only log of accepted scans.
//
// Append is only ever called from the sampling loop. QueryRange may run
// concurrently with it and must observe every Append that returned before
// the query began.
type ScanEventStore interface {
	// Append persists ev and returns its id. The event is durable once
	// Append returns nil.
	Append(ctx context.Context, ev types.ScanEvent) (types.EventID, error)

	// QueryRange returns every event whose date falls in [from, to],
	// ordered by (date, time) and then insertion order. from after to is
	// an empty range, not an error.
	QueryRange(ctx context.Context, from, to types.Date) ([]types.Row, error)
}
