package service

import (
	"context"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// RangeExporter is the read side used by export requests. It may run while
// the sampling loop keeps writing.
type RangeExporter struct {
	store store.ScanEventStore
}

// NewRangeExporter creates an exporter reading from st.
func NewRangeExporter(st store.ScanEventStore) *RangeExporter {
	return &RangeExporter{store: st}
}

// Export returns the rows dated within [from, to], ordered by date and time.
// Range handling (including from after to) belongs to the store; storage
// errors are returned as-is.
func (e *RangeExporter) Export(ctx context.Context, from, to types.Date) ([]types.Row, error) {
	return e.store.QueryRange(ctx, from, to)
}
