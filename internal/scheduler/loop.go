package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status represents the current state of a managed loop.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusFailed   Status = "failed"
)

// Task is one cycle of periodic work. A returned error marks the cycle
// as failed but does not stop the loop; a panic does.
type Task func(ctx context.Context) error

// Config holds configuration for a managed loop.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Interval is the fixed tick period between cycle starts.
	Interval time.Duration

	// Task is the work executed each cycle.
	Task Task

	// GracefulTimeout is how long Stop waits for an in-flight cycle
	// to finish before giving up.
	GracefulTimeout time.Duration

	// OnStop is called when the loop exits, with nil for a requested
	// stop and the recovered panic error for an unexpected death.
	OnStop func(err error)
}

// Logger defines the logging interface for the scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Loop runs a task at a fixed interval in its own goroutine.
//
// The first cycle runs immediately on Start. Subsequent cycles fire on
// a time.Ticker so the schedule does not drift when cycles are slow;
// if a cycle overruns the interval the stale tick is discarded and the
// next cycle starts at the next interval boundary, never back-to-back.
// Cycle errors are logged and counted, never fatal. A panic
// inside the task marks the loop failed and invokes OnStop with the
// recovered error.
type Loop struct {
	config Config
	logger Logger

	mu         sync.RWMutex
	status     Status
	cycles     uint64
	errorCount uint64
	lastError  error
	startTime  time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewLoop creates a loop with the given configuration.
func NewLoop(cfg Config) *Loop {
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 10 * time.Second
	}

	return &Loop{
		config: cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the logger for the loop.
func (l *Loop) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Start launches the loop goroutine. Returns an error if the loop is
// already running or misconfigured.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.status == StatusRunning || l.status == StatusStarting {
		l.mu.Unlock()
		return fmt.Errorf("loop %s is already running", l.config.Name)
	}
	if l.config.Task == nil {
		l.mu.Unlock()
		return fmt.Errorf("loop %s has no task", l.config.Name)
	}
	if l.config.Interval <= 0 {
		l.mu.Unlock()
		return fmt.Errorf("loop %s has no interval", l.config.Name)
	}
	l.status = StatusStarting
	l.stopOnce = sync.Once{}
	l.stopCh = make(chan struct{})
	l.done = make(chan struct{})
	l.mu.Unlock()

	l.logger.Info("starting loop", "name", l.config.Name, "interval", l.config.Interval)

	go l.run(ctx)

	return nil
}

// run drives the tick cycle until stopped, the context ends, or the
// task panics.
func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	l.mu.Lock()
	l.status = StatusRunning
	l.startTime = time.Now()
	l.mu.Unlock()

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		err := l.runCycle(ctx)
		if err != nil {
			// Panic escape path: the loop is dead.
			l.logger.Error("loop died", "name", l.config.Name, "error", err)
			l.mu.Lock()
			l.status = StatusFailed
			l.lastError = err
			l.mu.Unlock()
			if l.config.OnStop != nil {
				l.config.OnStop(err)
			}
			return
		}

		if time.Since(start) >= l.config.Interval {
			// A tick fired while the cycle overran. Consuming it below
			// would start the next cycle immediately instead of at the
			// next interval boundary, so discard it.
			select {
			case <-ticker.C:
			default:
			}
		}

		select {
		case <-ticker.C:
		case <-l.stopCh:
			l.finish("stop requested")
			return
		case <-ctx.Done():
			l.finish("context cancelled")
			return
		}
	}
}

func (l *Loop) finish(reason string) {
	l.logger.Info("loop stopped", "name", l.config.Name, "reason", reason)
	l.mu.Lock()
	l.status = StatusStopped
	l.mu.Unlock()
	if l.config.OnStop != nil {
		l.config.OnStop(nil)
	}
}

// runCycle executes one task invocation. The returned error is non-nil
// only when the task panicked; ordinary task errors are absorbed here.
func (l *Loop) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loop %s: task panicked: %v", l.config.Name, r)
		}
	}()

	start := time.Now()
	taskErr := l.config.Task(ctx)
	elapsed := time.Since(start)

	l.mu.Lock()
	l.cycles++
	if taskErr != nil {
		l.errorCount++
		l.lastError = taskErr
	}
	l.mu.Unlock()

	if taskErr != nil {
		l.logger.Warn("cycle failed",
			"name", l.config.Name,
			"error", taskErr,
			"elapsed", elapsed,
		)
		return nil
	}

	l.logger.Debug("cycle complete", "name", l.config.Name, "elapsed", elapsed)

	if elapsed > l.config.Interval {
		l.logger.Warn("cycle overran interval",
			"name", l.config.Name,
			"elapsed", elapsed,
			"interval", l.config.Interval,
		)
	}

	return nil
}

// Stop requests a graceful stop and waits for the in-flight cycle to
// finish, up to GracefulTimeout.
func (l *Loop) Stop() error {
	l.mu.RLock()
	status := l.status
	stopCh := l.stopCh
	done := l.done // Capture channels under lock to avoid races with Start
	l.mu.RUnlock()

	if status != StatusRunning && status != StatusStarting {
		return nil
	}
	if done == nil || stopCh == nil {
		return nil
	}

	l.stopOnce.Do(func() { close(stopCh) })

	select {
	case <-done:
		return nil
	case <-time.After(l.config.GracefulTimeout):
		return fmt.Errorf("loop %s did not stop within %s", l.config.Name, l.config.GracefulTimeout)
	}
}

// Status returns the current status of the loop.
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// LastError returns the most recent cycle error or panic.
func (l *Loop) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastError
}

// Stats holds statistics about a managed loop.
type Stats struct {
	Name       string        `json:"name"`
	Status     Status        `json:"status"`
	Cycles     uint64        `json:"cycles"`
	ErrorCount uint64        `json:"error_count"`
	Uptime     time.Duration `json:"uptime,omitempty"`
	LastError  string        `json:"last_error,omitempty"`
}

// Stats returns current statistics for the loop.
func (l *Loop) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		Name:       l.config.Name,
		Status:     l.status,
		Cycles:     l.cycles,
		ErrorCount: l.errorCount,
	}

	if l.status == StatusRunning {
		stats.Uptime = time.Since(l.startTime)
	}

	if l.lastError != nil {
		stats.LastError = l.lastError.Error()
	}

	return stats
}
