package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// DefaultDebounceWindow is used when GateConfig.DebounceWindow is not set.
const DefaultDebounceWindow = time.Second

// GateConfig holds the parameters for the debounce gate.
type GateConfig struct {
	// DebounceWindow is how long the same content must be gone before it is
	// accepted again. Defaults to one second.
	DebounceWindow time.Duration

	// AppendTimeout bounds a single store write. 0 means no timeout.
	AppendTimeout time.Duration
}

// ScanGate turns raw decode results into scan events, one per physical
// presentation of a code.
//
// A result is accepted when its content differs from the last accepted one,
// or when it matches but more than DebounceWindow has passed since that
// acceptance. Frames with no symbol leave the state untouched, so a code
// that flickers out of view and back within the window is still a repeat.
//
// The debounce state lives only in memory and starts empty. A ScanGate is
// driven by one sampling loop and is not safe for concurrent use.
type ScanGate struct {
	store         store.ScanEventStore
	window        time.Duration
	appendTimeout time.Duration
	logger        *slog.Logger
	observers     []Observer

	lastContent string
	lastAt      time.Time
}

// NewScanGate creates a gate with empty debounce state. observers are
// notified in order after every stored scan.
func NewScanGate(st store.ScanEventStore, cfg GateConfig, logger *slog.Logger, observers ...Observer) *ScanGate {
	window := cfg.DebounceWindow
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &ScanGate{
		store:         st,
		window:        window,
		appendTimeout: cfg.AppendTimeout,
		logger:        logger,
		observers:     observers,
	}
}

// Register adds an observer. Call before the sampling loop starts.
func (g *ScanGate) Register(o Observer) {
	g.observers = append(g.observers, o)
}

// Evaluate decides whether decoded is a new scan. Surrounding whitespace is
// not part of the content; an empty or blank decoded means no symbol was
// found in the frame.
//
// It returns the stored event on acceptance and nil on rejection. When the
// store fails the debounce state has already moved on, so the same physical
// scan is not retried on the next tick; the error wraps a
// *store.StorageError.
func (g *ScanGate) Evaluate(ctx context.Context, decoded string, now time.Time) (*types.ScanEvent, error) {
	content := strings.TrimSpace(decoded)
	if content == "" {
		return nil, nil
	}
	if !g.accepts(content, now) {
		return nil, nil
	}

	g.lastContent = content
	g.lastAt = now

	ev := types.NewScanEvent(content, now)

	appendCtx := ctx
	if g.appendTimeout > 0 {
		var cancel context.CancelFunc
		appendCtx, cancel = context.WithTimeout(ctx, g.appendTimeout)
		defer cancel()
	}

	id, err := g.store.Append(appendCtx, ev)
	if err != nil {
		if !store.IsStorageError(err) {
			err = store.NewStorageError("append", err)
		}
		return nil, errors.Wrapf(err, "record scan %q at %s", content, ev.ScannedAt())
	}
	ev.ID = id

	g.notify(ctx, ev)
	return &ev, nil
}

func (g *ScanGate) accepts(content string, now time.Time) bool {
	if content != g.lastContent {
		return true
	}
	return now.Sub(g.lastAt) > g.window
}

func (g *ScanGate) notify(ctx context.Context, ev types.ScanEvent) {
	for _, o := range g.observers {
		if err := g.notifyOne(ctx, o, ev); err != nil {
			g.logger.Warn("scan observer failed",
				slog.Int64("scan_id", int64(ev.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (g *ScanGate) notifyOne(ctx context.Context, o Observer, ev types.ScanEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("observer panic: %v", r)
		}
	}()
	return o.OnScanAccepted(ctx, ev)
}
