package scheduler

import (
	"context"
	"sync"
	"time"

	domrepo "TradeSim/internal/domain/repository"
	applogger "TradeSim/pkg/logger"
)

// Job is one periodic unit of work. Run is invoked once per tick; a returned
// error marks the tick failed but never stops the job.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives a set of jobs, each on its own ticker goroutine. Ticks do
// not overlap within a job; a slow run simply delays the next tick.
type Scheduler struct {
	jobs    []Job
	metrics domrepo.Metrics
	l       *applogger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(metrics domrepo.Metrics, l *applogger.Logger) *Scheduler {
	return &Scheduler{metrics: metrics, l: l}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start launches every registered job and returns immediately.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	s.l.Info("scheduler started", applogger.Int("jobs", len(s.jobs)))
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j Job) {
	start := time.Now()
	err := j.Run(ctx)
	s.metrics.RecordLatency(j.Name, time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.l.Error("scheduler: tick failed",
			applogger.String("job", j.Name),
			applogger.Error(err),
		)
	}
}

// Stop cancels all job loops and waits for in-flight ticks, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
