package worker

import (
	"context"
	"log/slog"
	"time"

	"rag-gateway/internal/domain"
)

const cleanupTimeout = 30 * time.Second

// CacheCleanupWorker periodically deletes expired web cache rows so the
// tables do not grow without bound between deploys.
type CacheCleanupWorker struct {
	cacheRepo domain.WebCacheRepository
	interval  time.Duration
	logger    *slog.Logger
	stopChan  chan struct{}
}

func NewCacheCleanupWorker(cacheRepo domain.WebCacheRepository, interval time.Duration, logger *slog.Logger) *CacheCleanupWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CacheCleanupWorker{
		cacheRepo: cacheRepo,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

func (w *CacheCleanupWorker) Start() {
	w.logger.Info("starting cache cleanup worker", slog.Duration("interval", w.interval))
	go w.run()
}

func (w *CacheCleanupWorker) Stop() {
	w.logger.Info("stopping cache cleanup worker")
	close(w.stopChan)
}

func (w *CacheCleanupWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *CacheCleanupWorker) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	deleted, err := w.cacheRepo.CleanupExpired(ctx)
	if err != nil {
		w.logger.Error("cache cleanup failed", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		w.logger.Info("cache cleanup completed", slog.Int64("deleted", deleted))
	}
}
