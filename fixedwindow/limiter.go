/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package fixedwindow

import (
	"time"

	"go.uber.org/atomic"
)

// Operation distinguishes which of the two independent budgets an acquisition consumes.
type Operation string

// Supported operations.
const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// Limiter is a thread-safe fixed-window rate limiter with independent read and write budgets.
// It is safe for use by any number of goroutines without external locking.
// The zero value is not usable, use New to construct a Limiter.
type Limiter struct {
	readLimit  int64
	writeLimit int64
	window     time.Duration

	readCount   atomic.Int64
	writeCount  atomic.Int64
	windowStart atomic.Int64 // unix milliseconds

	metricsCollector MetricsCollector

	now func() time.Time
}

// Result describes the outcome of a single acquisition attempt.
type Result struct {
	// Allowed reports whether the acquisition was granted.
	Allowed bool

	// Remaining is the budget left in the current window after the attempt, floored at zero.
	Remaining int

	// RetryAfter estimates how long to wait for the window to roll over.
	// It is zero if the acquisition was granted.
	RetryAfter time.Duration
}

// Status is a point-in-time snapshot of the limiter state. Taking it consumes no budget.
type Status struct {
	ReadCount      int
	WriteCount     int
	ReadRemaining  int
	WriteRemaining int

	// WindowReset is how long until the current window naturally resets, floored at zero.
	WindowReset time.Duration
}

// New creates a new Limiter with the provided configuration and metrics collector.
// Metrics collector is used to collect statistics about acquisitions and window rollovers.
// It can be nil, in this case, metrics will be disabled.
// If cfg is nil, the default configuration (60 reads and 20 writes per minute) is used.
func New(cfg *Config, metricsCollector MetricsCollector) (*Limiter, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metricsCollector == nil {
		metricsCollector = disabledMetricsCollector
	}
	l := &Limiter{
		readLimit:        int64(cfg.ReadLimit),
		writeLimit:       int64(cfg.WriteLimit),
		window:           time.Duration(cfg.Window),
		metricsCollector: metricsCollector,
		now:              time.Now,
	}
	l.windowStart.Store(l.now().UnixMilli())
	return l, nil
}

// TryAcquireRead attempts to consume one unit of the read budget in the current window.
// It returns false if the budget is exhausted. It never blocks.
func (l *Limiter) TryAcquireRead() bool {
	return l.tryAcquire(OperationRead, &l.readCount, l.readLimit)
}

// TryAcquireWrite attempts to consume one unit of the write budget in the current window.
// It returns false if the budget is exhausted. It never blocks.
func (l *Limiter) TryAcquireWrite() bool {
	return l.tryAcquire(OperationWrite, &l.writeCount, l.writeLimit)
}

// AcquireRead attempts to consume one unit of the read budget and reports the remaining
// budget and, on denial, an estimate of when the window rolls over. The estimate lets
// callers implement backoff without polling.
func (l *Limiter) AcquireRead() Result {
	return l.acquire(OperationRead, &l.readCount, l.readLimit)
}

// AcquireWrite attempts to consume one unit of the write budget and reports the remaining
// budget and, on denial, an estimate of when the window rolls over.
func (l *Limiter) AcquireWrite() Result {
	return l.acquire(OperationWrite, &l.writeCount, l.writeLimit)
}

// Status returns a snapshot of the limiter state, rolling the window first if it has
// expired. A snapshot never pairs a fresh window with counters of the previous one.
func (l *Limiter) Status() Status {
	nowMs := l.now().UnixMilli()
	l.rollWindowIfExpired(nowMs)
	readCount, writeCount := l.readCount.Load(), l.writeCount.Load()
	return Status{
		ReadCount:      int(readCount),
		WriteCount:     int(writeCount),
		ReadRemaining:  budgetRemaining(readCount, l.readLimit),
		WriteRemaining: budgetRemaining(writeCount, l.writeLimit),
		WindowReset:    l.untilWindowReset(nowMs),
	}
}

// Reset unconditionally starts a fresh window with full budgets.
// It is intended for administrative overrides and test setup, not for the acquire path.
func (l *Limiter) Reset() {
	l.readCount.Store(0)
	l.writeCount.Store(0)
	l.windowStart.Store(l.now().UnixMilli())
}

func (l *Limiter) tryAcquire(op Operation, count *atomic.Int64, limit int64) bool {
	l.rollWindowIfExpired(l.now().UnixMilli())
	if count.Load() >= limit {
		l.metricsCollector.IncDenied(op)
		return false
	}
	// The increment is the arbiter for callers that raced past the check above.
	// A denied caller keeps its increment until the window rolls over, so the counter
	// may transiently exceed the limit, but grants never do.
	if count.Inc() > limit {
		l.metricsCollector.IncDenied(op)
		return false
	}
	l.metricsCollector.IncAllowed(op)
	return true
}

func (l *Limiter) acquire(op Operation, count *atomic.Int64, limit int64) Result {
	allowed := l.tryAcquire(op, count, limit)
	res := Result{Allowed: allowed, Remaining: budgetRemaining(count.Load(), limit)}
	if !allowed {
		res.RetryAfter = l.untilWindowReset(l.now().UnixMilli())
	}
	return res
}

// rollWindowIfExpired starts a new window if the current one has expired.
// Only the caller whose CAS on the window start succeeds zeroes the counters,
// the losers proceed with the window the winner established.
func (l *Limiter) rollWindowIfExpired(nowMs int64) {
	windowStart := l.windowStart.Load()
	if nowMs-windowStart < l.window.Milliseconds() {
		return
	}
	if l.windowStart.CompareAndSwap(windowStart, nowMs) {
		l.readCount.Store(0)
		l.writeCount.Store(0)
		l.metricsCollector.IncWindowRollovers()
	}
}

func (l *Limiter) untilWindowReset(nowMs int64) time.Duration {
	left := l.window - time.Duration(nowMs-l.windowStart.Load())*time.Millisecond
	if left < 0 {
		return 0
	}
	return left
}

func budgetRemaining(count, limit int64) int {
	if count >= limit {
		return 0
	}
	return int(limit - count)
}
