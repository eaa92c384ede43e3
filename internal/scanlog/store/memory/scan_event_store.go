package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// ScanEventStore is an in-memory append-only scan log.
// It is intended for use in tests and dry runs; nothing survives a restart.
type ScanEventStore struct {
	mu     sync.RWMutex
	nextID types.EventID
	events []types.ScanEvent
}

func NewScanEventStore() *ScanEventStore {
	return &ScanEventStore{nextID: 1}
}

func (s *ScanEventStore) Append(_ context.Context, ev types.ScanEvent) (types.EventID, error) {
	if strings.TrimSpace(ev.Content) == "" {
		return 0, store.NewStorageError("append", errors.New("scan content is empty"))
	}
	if ev.Date == "" || ev.Time == "" {
		ev = types.NewScanEvent(ev.Content, ev.OccurredAt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.nextID
	s.nextID++
	s.events = append(s.events, ev)
	return ev.ID, nil
}

func (s *ScanEventStore) QueryRange(_ context.Context, from, to types.Date) ([]types.Row, error) {
	out := []types.Row{}
	if from.After(to) {
		return out, nil
	}
	lo, hi := from.String(), to.String()

	s.mu.RLock()
	matched := make([]types.ScanEvent, 0, len(s.events))
	for _, ev := range s.events {
		if ev.Date >= lo && ev.Date <= hi {
			matched = append(matched, ev)
		}
	}
	s.mu.RUnlock()

	// events are already in id order; a stable sort keeps it as the tiebreak.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date < matched[j].Date
		}
		return matched[i].Time < matched[j].Time
	})

	for _, ev := range matched {
		out = append(out, types.Row{Content: ev.Content, Date: ev.Date, Time: ev.Time})
	}
	return out, nil
}

// Events returns a copy of all stored events. Test-only helper.
func (s *ScanEventStore) Events() []types.ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ScanEvent, len(s.events))
	copy(out, s.events)
	return out
}
