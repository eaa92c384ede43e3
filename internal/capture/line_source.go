package capture

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// maxLine caps a single scanned payload. 2D codes top out around 7 KB;
// longer lines are dropped and reading continues with the next one.
const maxLine = 16 * 1024

// LineSource adapts a keyboard-wedge scanner (one payload per line on a
// reader) to the frame source contract. Only the newest unread line is
// kept; older unread lines are overwritten, just like camera frames that
// nobody sampled.
type LineSource struct {
	r      io.Reader
	logger *slog.Logger

	mu     sync.Mutex
	latest *types.Frame
	err    error

	done      chan struct{}
	closeOnce sync.Once
}

// NewLineSource starts reading r in the background.
func NewLineSource(r io.Reader, logger *slog.Logger) *LineSource {
	s := &LineSource{
		r:      r,
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.read()
	return s
}

// OpenLineSource opens path, or uses os.Stdin for "stdin" / "-".
func OpenLineSource(path string, logger *slog.Logger) (*LineSource, error) {
	switch strings.TrimSpace(path) {
	case "", "stdin", "-":
		return NewLineSource(os.Stdin, logger), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open input %s", path)
	}
	return NewLineSource(f, logger), nil
}

func (s *LineSource) read() {
	defer close(s.done)

	br := bufio.NewReaderSize(s.r, maxLine)
	var err error
	for {
		var line []byte
		line, err = br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			err = s.discardLine(br)
			if err != nil {
				break
			}
			continue
		}
		if len(line) > 0 {
			s.publish(line)
		}
		if err != nil {
			break
		}
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.logger.Info("line source finished", slog.String("reason", err.Error()))
}

// discardLine drops the rest of a line that overflowed the buffer. The
// source keeps reading afterwards.
func (s *LineSource) discardLine(br *bufio.Reader) error {
	dropped := maxLine
	for {
		chunk, err := br.ReadSlice('\n')
		dropped += len(chunk)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		s.logger.Warn("scanned line too long, dropped",
			slog.Int("bytes", dropped),
			slog.Int("max_bytes", maxLine),
		)
		return err
	}
}

func (s *LineSource) publish(raw []byte) {
	line := strings.TrimRight(string(raw), "\r\n")
	if line == "" {
		return
	}
	f := types.Frame{Data: []byte(line), CapturedAt: time.Now()}
	s.mu.Lock()
	s.latest = &f
	s.mu.Unlock()
}

// LatestFrame returns the newest unread line. Once a line is handed out it
// is gone.
func (s *LineSource) LatestFrame(_ context.Context) (types.Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil {
		f := *s.latest
		s.latest = nil
		return f, true, nil
	}
	if s.err != nil && !errors.Is(s.err, io.EOF) {
		return types.Frame{}, false, s.err
	}
	return types.Frame{}, false, nil
}

// Done is closed when the reader is exhausted.
func (s *LineSource) Done() <-chan struct{} {
	return s.done
}

func (s *LineSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if c, ok := s.r.(io.Closer); ok && s.r != os.Stdin {
			err = c.Close()
		}
	})
	return err
}
