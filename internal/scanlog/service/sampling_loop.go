package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/BrandonDHaskell/scanlog/internal/pkg/clock"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// DefaultSamplingInterval is used when LoopConfig.Interval is not set.
const DefaultSamplingInterval = 100 * time.Millisecond

// FrameSource hands out the most recent frame. ok is false when nothing new
// is available yet; that tick is skipped.
type FrameSource interface {
	LatestFrame(ctx context.Context) (frame types.Frame, ok bool, err error)
	Close() error
}

// Decoder extracts a symbol payload from a frame. ok is false when the frame
// holds no symbol.
type Decoder interface {
	Decode(ctx context.Context, frame types.Frame) (text string, ok bool, err error)
}

// LoopConfig holds the timing parameters of a SamplingLoop.
type LoopConfig struct {
	// Interval between ticks. Defaults to 100ms.
	Interval time.Duration

	// DecodeTimeout is passed to the decoder as a context deadline.
	// 0 means no timeout.
	DecodeTimeout time.Duration
}

// LoopDeps are the collaborators a SamplingLoop drives. Clock defaults to
// wall-clock time in the local zone.
type LoopDeps struct {
	Source  FrameSource
	Decoder Decoder
	Gate    *ScanGate
	Clock   clock.Clock
	Logger  *slog.Logger

	// OnStorageError, if set, is called for every scan that was accepted but
	// could not be stored. The loop keeps running either way.
	OnStorageError func(error)
}

// LoopStats are cumulative counters since Start.
type LoopStats struct {
	Ticks           int64 // ticks that ran
	Dropped         int64 // ticks skipped because the previous one was still running
	NoFrame         int64
	Accepted        int64
	StorageFailures int64
}

// SamplingLoop pulls a frame, decodes it and feeds the result to the gate
// on a fixed cadence. At most one tick is in flight; a tick that comes due
// while the previous one is still decoding is dropped rather than queued.
type SamplingLoop struct {
	source  FrameSource
	decoder Decoder
	gate    *ScanGate
	clock   clock.Clock
	logger  *slog.Logger
	onError func(error)

	interval      time.Duration
	decodeTimeout time.Duration

	inflight *semaphore.Weighted
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	stopped bool

	sourceDown atomic.Bool

	ticks, dropped, noFrame, accepted, storageFailures atomic.Int64
}

// NewSamplingLoop creates a loop but does not start it.
func NewSamplingLoop(d LoopDeps, cfg LoopConfig) *SamplingLoop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSamplingInterval
	}
	c := d.Clock
	if c == nil {
		c = clock.NewRealClock(time.Local)
	}

	return &SamplingLoop{
		source:        d.Source,
		decoder:       d.Decoder,
		gate:          d.Gate,
		clock:         c,
		logger:        d.Logger,
		onError:       d.OnStorageError,
		interval:      interval,
		decodeTimeout: cfg.DecodeTimeout,
		inflight:      semaphore.NewWeighted(1),
		done:          make(chan struct{}),
	}
}

// Start begins ticking. The loop exits when ctx is cancelled or Stop is
// called. Calling Start twice is a no-op.
func (l *SamplingLoop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true

	runID := uuid.NewString()
	l.logger = l.logger.With(slog.String("run_id", runID))

	ctx, l.cancel = context.WithCancel(ctx)
	go l.loop(ctx)

	l.logger.Info("sampling loop started", slog.Duration("interval", l.interval))
}

// Stop stops the timer, waits for an in-flight tick to finish (a scan being
// written is never cut short) and releases the frame source. Safe to call
// more than once, and before Start.
func (l *SamplingLoop) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		started, cancel := l.started, l.cancel
		l.mu.Unlock()

		if started {
			cancel()
			<-l.done
			// Wait out the tick that may still be running.
			_ = l.inflight.Acquire(context.Background(), 1)
			l.inflight.Release(1)
		}
		err = l.source.Close()

		s := l.Stats()
		l.logger.Info("sampling loop stopped",
			slog.Int64("ticks", s.Ticks),
			slog.Int64("dropped", s.Dropped),
			slog.Int64("accepted", s.Accepted),
			slog.Int64("storage_failures", s.StorageFailures),
		)
	})
	return err
}

// Stats returns a snapshot of the counters.
func (l *SamplingLoop) Stats() LoopStats {
	return LoopStats{
		Ticks:           l.ticks.Load(),
		Dropped:         l.dropped.Load(),
		NoFrame:         l.noFrame.Load(),
		Accepted:        l.accepted.Load(),
		StorageFailures: l.storageFailures.Load(),
	}
}

func (l *SamplingLoop) loop(ctx context.Context) {
	defer close(l.done)

	// Ticks run detached from ctx so that stopping never aborts a write.
	tickCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.inflight.TryAcquire(1) {
				l.dropped.Add(1)
				continue
			}
			go func() {
				defer l.inflight.Release(1)
				_, _ = l.Tick(tickCtx)
			}()
		}
	}
}

// Tick runs one sample synchronously: latest frame, decode, evaluate. It
// returns the accepted event, if any. Callers other than the loop itself
// must not overlap Tick calls.
func (l *SamplingLoop) Tick(ctx context.Context) (*types.ScanEvent, error) {
	l.ticks.Add(1)

	frame, ok, err := l.source.LatestFrame(ctx)
	l.trackSource(err)
	if err != nil {
		ok = false
	}
	if !ok {
		l.noFrame.Add(1)
		return nil, nil
	}

	text := l.decode(ctx, frame)

	ev, err := l.gate.Evaluate(ctx, text, l.clock.Now())
	if err != nil {
		l.storageFailures.Add(1)
		l.logger.Error("scan observed but not recorded", slog.String("error", err.Error()))
		if l.onError != nil {
			l.onError(err)
		}
		return nil, err
	}
	if ev != nil {
		l.accepted.Add(1)
		l.logger.Info("scan accepted",
			slog.Int64("scan_id", int64(ev.ID)),
			slog.String("content", ev.Content),
			slog.String("scanned_at", ev.ScannedAt()),
		)
	}
	return ev, nil
}

// trackSource logs source failures once per outage rather than every tick.
func (l *SamplingLoop) trackSource(err error) {
	if err == nil {
		if l.sourceDown.CompareAndSwap(true, false) {
			l.logger.Warn("frame source recovered")
		}
		return
	}
	if l.sourceDown.CompareAndSwap(false, true) {
		l.logger.Warn("frame source unavailable", slog.String("error", err.Error()))
		return
	}
	l.logger.Debug("frame source still unavailable", slog.String("error", err.Error()))
}

// decode returns "" when the frame holds no symbol or the decoder fails.
func (l *SamplingLoop) decode(ctx context.Context, frame types.Frame) string {
	if l.decodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.decodeTimeout)
		defer cancel()
	}

	text, ok, err := l.decoder.Decode(ctx, frame)
	if err != nil {
		l.logger.Warn("decode failed", slog.String("error", err.Error()))
		return ""
	}
	if !ok {
		return ""
	}
	return text
}
