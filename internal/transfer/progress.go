package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Progress is the pollable record of one transfer. The background worker is
// its only writer; readers may call any exported method concurrently. All
// fields are guarded by mu so (transferred, status) is never observed torn.
type Progress struct {
	id         uuid.UUID
	direction  Direction
	remotePath string
	localPath  string
	createdAt  time.Time

	mu          sync.Mutex
	total       int64
	transferred int64
	offset      int64
	resumed     bool
	status      Status
	err         error
	finishedAt  time.Time
	lastPoll    int64

	done chan struct{}
}

// Snapshot is a consistent copy of a Progress at one instant.
type Snapshot struct {
	ID          string
	Direction   Direction
	RemotePath  string
	LocalPath   string
	Status      Status
	TotalSize   int64
	Transferred int64
	Percentage  float64
	StartOffset int64
	Resumed     bool
	Err         error
	CreatedAt   time.Time
	FinishedAt  time.Time
}

func newProgress(direction Direction, remotePath, localPath string) *Progress {
	return &Progress{
		id:         uuid.New(),
		direction:  direction,
		remotePath: remotePath,
		localPath:  localPath,
		createdAt:  time.Now(),
		status:     StatusPending,
		done:       make(chan struct{}),
	}
}

func (p *Progress) ID() string           { return p.id.String() }
func (p *Progress) Direction() Direction { return p.direction }
func (p *Progress) CreatedAt() time.Time { return p.createdAt }

func (p *Progress) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// TotalSize is fixed before the first byte is copied.
func (p *Progress) TotalSize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Transferred includes the resume offset, so it reaches TotalSize on success.
func (p *Progress) Transferred() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transferred
}

// Resumed reports whether the transfer continued from a non-zero offset.
func (p *Progress) Resumed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resumed
}

// Err returns the terminal error, nil while running or after Completed.
func (p *Progress) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Percentage returns 100*transferred/total, or 0 when the total is unknown or zero.
func (p *Progress) Percentage() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return percentage(p.transferred, p.total)
}

// CurrentDelta returns the bytes transferred since the previous call and
// moves the shared baseline forward. It consumes state: two pollers calling
// it on the same handle split the deltas between them. Use NewCursor for
// independent pollers.
func (p *Progress) CurrentDelta() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	delta := p.transferred - p.lastPoll
	p.lastPoll = p.transferred
	return delta
}

// Done is closed once the status is terminal.
func (p *Progress) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the transfer is terminal or ctx ends.
func (p *Progress) Wait(ctx context.Context) (Status, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.status, p.err
	case <-ctx.Done():
		return p.Status(), ctx.Err()
	}
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		ID:          p.id.String(),
		Direction:   p.direction,
		RemotePath:  p.remotePath,
		LocalPath:   p.localPath,
		Status:      p.status,
		TotalSize:   p.total,
		Transferred: p.transferred,
		Percentage:  percentage(p.transferred, p.total),
		StartOffset: p.offset,
		Resumed:     p.resumed,
		Err:         p.err,
		CreatedAt:   p.createdAt,
		FinishedAt:  p.finishedAt,
	}
}

// Cursor is a per-subscriber delta reader over a Progress.
type Cursor struct {
	p        *Progress
	mu       sync.Mutex
	baseline int64
}

// NewCursor returns a cursor whose first Delta counts from the current
// transferred value.
func (p *Progress) NewCursor() *Cursor {
	return &Cursor{p: p, baseline: p.Transferred()}
}

func (c *Cursor) Delta() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.p.Transferred()
	delta := current - c.baseline
	c.baseline = current
	return delta
}

// prepare fixes the total and the starting offset while still pending.
func (p *Progress) prepare(total, offset int64, resumed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusPending {
		return
	}
	p.total = total
	p.offset = offset
	p.transferred = offset
	p.lastPoll = offset
	p.resumed = resumed
}

func (p *Progress) setTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPending {
		p.total = total
	}
}

func (p *Progress) run() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPending {
		p.status = StatusRunning
	}
}

func (p *Progress) add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Terminal() {
		return
	}
	p.transferred += n
}

// finish moves to a terminal status. It reports false if the handle was
// already terminal, in which case nothing changes.
func (p *Progress) finish(status Status, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Terminal() || !status.Terminal() {
		return false
	}
	p.status = status
	p.err = err
	p.finishedAt = time.Now()
	close(p.done)
	return true
}

func percentage(transferred, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(transferred) / float64(total)
}
