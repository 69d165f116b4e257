package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	applogger "TradeSim/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordTickStored(string)       {}
func (nopMetrics) RecordSignal(string)           {}
func (nopMetrics) RecordSignalSkip(string)       {}
func (nopMetrics) RecordDecision(string, string) {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}

func TestSchedulerRunsJobs(t *testing.T) {
	var runs atomic.Int64
	s := New(nopMetrics{}, applogger.Nop())
	s.Register(Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start()
	time.Sleep(40 * time.Millisecond)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if runs.Load() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", runs.Load())
	}
}

func TestSchedulerSurvivesFailingTicks(t *testing.T) {
	var runs atomic.Int64
	s := New(nopMetrics{}, applogger.Nop())
	s.Register(Job{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return fmt.Errorf("boom")
		},
	})

	s.Start()
	time.Sleep(40 * time.Millisecond)
	_ = s.Stop(context.Background())
	if runs.Load() < 2 {
		t.Fatalf("job must keep running after failures, got %d runs", runs.Load())
	}
}

func TestSchedulerStopHaltsJobs(t *testing.T) {
	var runs atomic.Int64
	s := New(nopMetrics{}, applogger.Nop())
	s.Register(Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start()
	time.Sleep(20 * time.Millisecond)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	after := runs.Load()
	time.Sleep(25 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job ran after stop: %d -> %d", after, runs.Load())
	}
}
