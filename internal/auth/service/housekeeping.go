package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically drops online-registry entries for
// sessions that can no longer be alive.
type HousekeepingService struct {
	Online   *OnlineUsers
	Logger   *slog.Logger
	Interval time.Duration
	MaxAge   time.Duration // usually the refresh token TTL

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeper. A non-positive interval
// defaults to one hour.
func NewHousekeepingService(online *OnlineUsers, logger *slog.Logger, interval, maxAge time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Online:   online,
		Logger:   logger,
		Interval: interval,
		MaxAge:   maxAge,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.Online.Prune(ctx, s.MaxAge)
	if err != nil {
		s.Logger.Error("failed to prune online users", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "pruned_online_users", n)
}
