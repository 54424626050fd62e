package scheduler

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSupervisor_RunsAllLoops(t *testing.T) {
	var a, b atomic.Int64

	sup := NewSupervisor()
	sup.Add(Config{
		Name:     "loop-a",
		Interval: 10 * time.Millisecond,
		Task: func(ctx context.Context) error {
			a.Add(1)
			return nil
		},
	})
	sup.Add(Config{
		Name:     "loop-b",
		Interval: 10 * time.Millisecond,
		Task: func(ctx context.Context) error {
			b.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on context cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancel")
	}

	if a.Load() == 0 || b.Load() == 0 {
		t.Errorf("cycles a=%d b=%d, want both running", a.Load(), b.Load())
	}
}

func TestSupervisor_LoopDeathIsFatal(t *testing.T) {
	sup := NewSupervisor()
	sup.Add(Config{
		Name:     "healthy",
		Interval: 10 * time.Millisecond,
		Task:     func(ctx context.Context) error { return nil },
	})
	sup.Add(Config{
		Name:     "doomed",
		Interval: 10 * time.Millisecond,
		Task: func(ctx context.Context) error {
			panic("boom")
		},
	})

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run() = nil, want error after loop death")
		}
		if !strings.Contains(err.Error(), "doomed") {
			t.Errorf("Run() error = %v, want loop name in error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after loop death")
	}
}

func TestSupervisor_StatsCoverAllLoops(t *testing.T) {
	sup := NewSupervisor()
	sup.Add(Config{
		Name:     "one",
		Interval: time.Hour,
		Task:     func(ctx context.Context) error { return nil },
	})
	sup.Add(Config{
		Name:     "two",
		Interval: time.Hour,
		Task:     func(ctx context.Context) error { return nil },
	})

	stats := sup.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(Stats()) = %d, want 2", len(stats))
	}
	if stats[0].Name != "one" || stats[1].Name != "two" {
		t.Errorf("stats names = %s, %s", stats[0].Name, stats[1].Name)
	}
}
