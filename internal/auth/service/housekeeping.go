package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/internal/observability/metrics"
)

// HousekeepingService periodically sweeps accounts whose owning user no
// longer exists. The cascade on user deletion is best-effort, so rows it
// skipped over are collected here instead of accumulating forever.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. A non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once at startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	removed, err := s.Store.Accounts().DeleteOrphanedAccounts(ctx)
	if err != nil {
		s.Logger.Error("failed to sweep orphaned accounts", "error", err)
		return
	}
	metrics.AddOrphansSwept(removed)
	if removed > 0 {
		s.Logger.Info("swept orphaned accounts", "removed", removed)
	} else {
		s.Logger.Debug("no orphaned accounts to sweep")
	}
}
