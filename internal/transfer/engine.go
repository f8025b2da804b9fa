package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"resumeftp/internal/metrics"
)

// DefaultChunkSize is the copy-loop read size.
const DefaultChunkSize = 32 * 1024

// Engine runs downloads and uploads over a single Session. At most one
// transfer is in flight per engine; create one engine per session.
type Engine struct {
	session   Session
	logger    *slog.Logger
	chunkSize int
	rateLimit int64
	limiter   *rate.Limiter

	busy chan struct{}
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithChunkSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithRateLimit caps throughput at bytesPerSecond. Zero or less disables the cap.
func WithRateLimit(bytesPerSecond int64) Option {
	return func(e *Engine) {
		e.rateLimit = bytesPerSecond
	}
}

func NewEngine(session Session, opts ...Option) *Engine {
	e := &Engine{
		session:   session,
		logger:    slog.Default(),
		chunkSize: DefaultChunkSize,
		busy:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rateLimit > 0 {
		// burst equals one chunk so WaitN never exceeds it
		e.limiter = rate.NewLimiter(rate.Limit(e.rateLimit), e.chunkSize)
	}
	return e
}

func (e *Engine) acquire() bool {
	select {
	case e.busy <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *Engine) release() {
	<-e.busy
}

// pump copies src into dst chunk by chunk, accounting every written chunk on
// p. The context is checked between chunks.
func (e *Engine) pump(ctx context.Context, dst io.Writer, src io.Reader, p *Progress, logger *slog.Logger) error {
	buf := make([]byte, e.chunkSize)
	tracker := newPercentTracker(p.TotalSize(), p.Transferred())
	bytesCounter := metrics.TransferredBytesTotal.WithLabelValues(string(p.Direction()))

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transfer cancelled: %w", err)
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if e.limiter != nil {
				if err := e.limiter.WaitN(ctx, n); err != nil {
					return fmt.Errorf("transfer cancelled: %w", err)
				}
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("%w: write: %w", ErrIOFailure, err)
			}
			p.add(int64(n))
			bytesCounter.Add(float64(n))

			if percent, ok := tracker.advance(p.Transferred()); ok {
				logger.Debug("Transfer progress", "percent", percent)
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("%w: read: %w", ErrIOFailure, readErr)
		}
	}
}

// percentTracker reports each new whole percent reached, in steps of 1% of
// total. Totals under 100 bytes have no integral step and use the ratio.
type percentTracker struct {
	total int64
	step  int64
	last  int64
}

func newPercentTracker(total, start int64) *percentTracker {
	t := &percentTracker{total: total, step: total / 100}
	t.last = t.percent(start)
	return t
}

func (t *percentTracker) percent(n int64) int64 {
	if t.total <= 0 {
		return 0
	}
	var p int64
	if t.step == 0 {
		p = n * 100 / t.total
	} else {
		p = n / t.step
	}
	if p > 100 {
		p = 100
	}
	return p
}

func (t *percentTracker) advance(n int64) (int64, bool) {
	p := t.percent(n)
	if p <= t.last {
		return 0, false
	}
	t.last = p
	return p, true
}

// finish records the terminal status on p and in the metrics.
func (e *Engine) finish(p *Progress, status Status, err error, logger *slog.Logger) {
	if !p.finish(status, err) {
		return
	}
	metrics.TransfersFinishedTotal.WithLabelValues(string(p.Direction()), status.String()).Inc()
	if err != nil && status == StatusFailed {
		logger.Error("Transfer failed", "status", status, "transferred", p.Transferred(), "error", err)
		return
	}
	logger.Info("Transfer finished", "status", status, "transferred", p.Transferred(), "total", p.TotalSize())
}

func startMode(resumed bool) string {
	if resumed {
		return "resume"
	}
	return "fresh"
}

func closeQuietly(c io.Closer, what string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("Close failed", "stream", what, "error", err)
	}
}
