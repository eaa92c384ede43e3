package service

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// Observer is told about every scan that was accepted and stored. It runs
// synchronously on the sampling loop, so it should be quick. Returned errors
// and panics are logged by the gate and otherwise ignored.
type Observer interface {
	OnScanAccepted(ctx context.Context, ev types.ScanEvent) error
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, ev types.ScanEvent) error

func (f ObserverFunc) OnScanAccepted(ctx context.Context, ev types.ScanEvent) error {
	return f(ctx, ev)
}

// LastScan remembers the most recent accepted scan for "last scanned"
// displays. Safe for concurrent use.
type LastScan struct {
	mu   sync.RWMutex
	last types.ScanEvent
	ok   bool
}

// NewLastScan returns a LastScan that has seen nothing yet.
func NewLastScan() *LastScan {
	return &LastScan{}
}

func (l *LastScan) OnScanAccepted(_ context.Context, ev types.ScanEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = ev
	l.ok = true
	return nil
}

// Last returns the latest scan, or false before the first one.
func (l *LastScan) Last() (types.ScanEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last, l.ok
}
