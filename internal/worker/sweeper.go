// Package worker contains the background sweeper for the live session
// registry.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/serpent-showdown/internal/config"
	"github.com/serpent-showdown/internal/redis"
)

// Sweeper evicts live sessions whose publisher stopped refreshing them.
// Publishers overwrite snapshots continuously while a game runs; a session
// that has not been touched within the TTL is finished or orphaned.
type Sweeper struct {
	store   *redis.LiveStore
	config  *config.RegistryConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a new sweeper
func NewSweeper(store *redis.LiveStore, cfg *config.RegistryConfig, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background sweep process
func (w *Sweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("session sweeper started",
		"interval", w.config.SweepInterval,
		"session_ttl", w.config.SessionTTL,
	)

	go w.run(ctx)
	return nil
}

// Stop stops the background sweep process
func (w *Sweeper) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("session sweeper stopped")
	return nil
}

// run is the main worker loop
func (w *Sweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep removes sessions last refreshed before the TTL cutoff
func (w *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.SessionTTL)
	removed, err := w.store.PruneStale(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to prune stale sessions", "error", err)
		return
	}
	if removed > 0 {
		w.logger.Info("pruned stale sessions", "removed", removed)
	}
}

// IsRunning returns whether the worker is currently running
func (w *Sweeper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single sweep cycle (useful for manual triggers)
func (w *Sweeper) RunOnce(ctx context.Context) {
	w.sweep(ctx)
}
