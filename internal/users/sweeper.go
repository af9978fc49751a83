package users

import (
	"context"
	"log/slog"
	"time"

	"github.com/khanghh/clubhub/params"
)

// Sweeper periodically deletes unverified users whose verification window
// has closed.
type Sweeper struct {
	userRepo UserRepository
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// Start runs a sweep immediately and then once per interval until Stop.
func (s *Sweeper) Start() {
	go s.run()
	s.logger.Info("unverified user sweeper started", "interval", s.interval)
}

// Stop blocks until an in-flight sweep has finished.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("unverified user sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(context.Background())
	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes expired unverified users once and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.userRepo.DeleteExpiredUnverified(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to delete expired unverified users", "error", err)
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("deleted expired unverified users", "count", deleted)
	}
	return deleted, nil
}

func NewSweeper(userRepo UserRepository, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = params.UnverifiedSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		userRepo: userRepo,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}
