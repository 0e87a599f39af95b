package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultRate is the target number of frames per second
const DefaultRate = 60

// TickFunc renders one frame. dt is the wall time since the previous tick.
type TickFunc func(dt time.Duration)

// ErrorHandler handles panics during a tick.
// Returns true to keep the loop running, false to stop it.
type ErrorHandler func(err interface{}) bool

// Option configures a Loop
type Option func(*Loop)

// WithRate sets the target frames per second
func WithRate(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithErrorHandler sets the panic handler. The default logs and keeps running.
func WithErrorHandler(h ErrorHandler) Option {
	return func(l *Loop) { l.onError = h }
}

// WithLogger sets the loop's logger
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithQueueSize sets how many posted tasks may wait for the next frame
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// Loop invokes a tick function at a fixed rate on its own goroutine.
// Work posted with Post runs on that same goroutine right before the next
// tick, so the tick function and the posted work never overlap.
type Loop struct {
	interval  time.Duration
	tick      TickFunc
	onError   ErrorHandler
	log       *zap.Logger
	queueSize int

	tasks    chan func()
	running  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	frames   atomic.Uint64
}

// NewLoop creates a stopped loop
func NewLoop(tick TickFunc, opts ...Option) *Loop {
	l := &Loop{
		interval:  time.Second / DefaultRate,
		tick:      tick,
		log:       zap.NewNop(),
		queueSize: 256,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tasks = make(chan func(), l.queueSize)
	return l
}

// Start begins ticking. Calling it again, or after Stop, does nothing.
func (l *Loop) Start() {
	if l.stopped.Load() {
		return
	}
	if !l.running.CompareAndSwap(false, true) {
		l.log.Debug("loop already running")
		return
	}
	go l.run()
}

// Stop ends the loop and waits for an in-flight tick to finish. No tick
// starts after Stop returns. It is idempotent but must not be called from
// inside the tick function or a posted task.
func (l *Loop) Stop() {
	l.signalStop()
	if l.running.Load() {
		<-l.done
	}
}

func (l *Loop) signalStop() {
	l.stopOnce.Do(func() {
		l.stopped.Store(true)
		close(l.stopCh)
	})
}

// Done is closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// IsRunning reports whether the loop goroutine is active
func (l *Loop) IsRunning() bool {
	return l.running.Load() && !l.stopped.Load()
}

// Frames returns the number of completed ticks
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Post queues fn to run on the loop goroutine before the next tick.
// It blocks while the queue is full and reports false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil || l.stopped.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopCh:
		return false
	}
}

func (l *Loop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	l.log.Debug("loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-l.stopCh:
			l.log.Debug("loop ended", zap.Uint64("frames", l.frames.Load()))
			return
		case now := <-ticker.C:
			// a stop that raced with the ticker wins
			select {
			case <-l.stopCh:
				continue
			default:
			}
			if !l.drain() {
				l.signalStop()
				continue
			}
			dt := now.Sub(last)
			last = now
			if !l.safeTick(dt) {
				l.signalStop()
				continue
			}
			l.frames.Add(1)
		}
	}
}

// drain runs every queued task without waiting for more. It reports false
// when a failing task asked the loop to stop.
func (l *Loop) drain() bool {
	for {
		select {
		case fn := <-l.tasks:
			if !l.safeRun(fn) {
				return false
			}
		default:
			return true
		}
	}
}

func (l *Loop) safeTick(dt time.Duration) bool {
	return l.safeRun(func() { l.tick(dt) })
}

func (l *Loop) safeRun(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = l.handleError(r)
		}
	}()
	fn()
	return true
}

func (l *Loop) handleError(r interface{}) bool {
	msg := fmt.Sprintf("tick panic: %v\n%s", r, debug.Stack())
	if l.onError != nil {
		return l.onError(msg)
	}
	l.log.Error("tick panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
	return true
}
