package service_test

import (
	"time"

	"github.com/BrandonDHaskell/scanlog/internal/logging"
	"github.com/BrandonDHaskell/scanlog/internal/pkg/clock"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store/memory"
)

var t0 = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestGate(st store.ScanEventStore, observers ...service.Observer) *service.ScanGate {
	return service.NewScanGate(st, service.GateConfig{DebounceWindow: time.Second}, logging.Discard(), observers...)
}

func newMemoryGate(observers ...service.Observer) (*service.ScanGate, *memory.ScanEventStore) {
	st := memory.NewScanEventStore()
	return newTestGate(st, observers...), st
}

func newTestClock() *clock.MockClock {
	return clock.NewMockClock(t0)
}
