package scheduler

import (
	"context"
	"fmt"
)

// loopFailure carries the identity and cause of an unexpected loop death.
type loopFailure struct {
	name string
	err  error
}

// Supervisor runs a set of loops and treats the unexpected death of
// any one of them as fatal.
//
// Run blocks until the context is cancelled, in which case all loops
// are stopped gracefully and nil is returned, or until a loop dies,
// in which case the remaining loops are stopped and the failure is
// returned so the process can exit.
type Supervisor struct {
	loops    []*Loop
	logger   Logger
	failures chan loopFailure
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		logger:   noopLogger{},
		failures: make(chan loopFailure, 8),
	}
}

// SetLogger sets the logger for the supervisor.
func (s *Supervisor) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Add registers a loop built from the given config. The config's
// OnStop is chained so the supervisor still observes failures.
func (s *Supervisor) Add(cfg Config) *Loop {
	name := cfg.Name
	userOnStop := cfg.OnStop
	cfg.OnStop = func(err error) {
		if userOnStop != nil {
			userOnStop(err)
		}
		if err != nil {
			s.failures <- loopFailure{name: name, err: err}
		}
	}

	loop := NewLoop(cfg)
	s.loops = append(s.loops, loop)
	return loop
}

// Run starts every registered loop and blocks until shutdown.
func (s *Supervisor) Run(ctx context.Context) error {
	for i, loop := range s.loops {
		loop.SetLogger(s.logger)
		if err := loop.Start(ctx); err != nil {
			s.stopLoops(s.loops[:i])
			return fmt.Errorf("starting loop: %w", err)
		}
	}

	select {
	case <-ctx.Done():
		s.logger.Info("supervisor shutting down")
		s.stopLoops(s.loops)
		return nil

	case failure := <-s.failures:
		s.logger.Error("loop died unexpectedly, shutting down",
			"name", failure.name,
			"error", failure.err,
		)
		s.stopLoops(s.loops)
		return fmt.Errorf("loop %s died: %w", failure.name, failure.err)
	}
}

// stopLoops stops loops in reverse registration order.
func (s *Supervisor) stopLoops(loops []*Loop) {
	for i := len(loops) - 1; i >= 0; i-- {
		if err := loops[i].Stop(); err != nil {
			s.logger.Warn("loop stop timed out", "error", err)
		}
	}
}

// Stats returns statistics for every registered loop.
func (s *Supervisor) Stats() []Stats {
	stats := make([]Stats, 0, len(s.loops))
	for _, loop := range s.loops {
		stats = append(stats, loop.Stats())
	}
	return stats
}
