// Package scheduler releases scheduled messages on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/elecmate/commsdesk/internal/models"
	"go.uber.org/zap"
)

// Processor is what runs on each tick.
type Processor interface {
	ReleaseDue(ctx context.Context, now time.Time) ([]models.Message, error)
}

var (
	ErrAlreadyRunning = errors.New("scheduler already running")
	ErrNotRunning     = errors.New("scheduler not running")
)

// Scheduler calls its processor on every tick of a cron expression, plus
// once at start so messages that came due while the process was down are
// not held back until the first tick.
type Scheduler struct {
	processor Processor
	cron      string
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// runMu keeps ticks from overlapping.
	runMu sync.Mutex
}

func New(processor Processor, cron string, location *time.Location, logger *zap.Logger) *Scheduler {
	if cron == "" {
		cron = "* * * * *"
	}
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		processor: processor,
		cron:      cron,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins the background loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	if !gronx.IsValid(s.cron) {
		return errors.New("invalid cron expression: " + s.cron)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx, s.done)
	s.logger.Info("scheduler started", zap.String("cron", s.cron))
	return nil
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce releases whatever is due now and returns how many messages went
// out.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	released, err := s.processor.ReleaseDue(ctx, s.now().In(s.location))
	if err != nil {
		return 0, err
	}
	return len(released), nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.execute(ctx)

	for {
		next, err := gronx.NextTickAfter(s.cron, s.now().In(s.location), false)
		if err != nil {
			s.logger.Error("next tick", zap.String("cron", s.cron), zap.Error(err))
			next = s.now().Add(time.Minute)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.execute(ctx)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context) {
	n, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("scheduler iteration failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("scheduled messages released", zap.Int("count", n))
	}
}
