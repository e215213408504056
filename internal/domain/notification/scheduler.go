package notification

import (
	"context"
	"sync"
	"time"

	"stockcontrol/pkg/logger"
)

// Scheduler runs the full low-stock scan on a fixed interval. Start runs
// one scan immediately, then ticks. Start while running is a no-op, and
// Stop leaves the scheduler restartable.
type Scheduler struct {
	notifier *Notifier
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler creates a scan scheduler. NotifierConfig's canonical
// interval is one hour.
func NewScheduler(notifier *Notifier, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{notifier: notifier, interval: interval}
}

// Start launches the scan loop. Calling Start on a running scheduler
// does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	logger.Info(ctx, "low-stock scheduler started", "interval", s.interval)
}

// Stop halts the loop and waits for an in-flight scan to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.scanOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce(ctx)
		}
	}
}

// scanOnce runs one full scan. Errors are logged, never fatal: the next
// tick gets a fresh attempt.
func (s *Scheduler) scanOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.notifier.ScanAll(ctx); err != nil {
		logger.Error(ctx, "scheduled low-stock scan failed", "error", err)
	}
}
