// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Purger removes expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionCleanup is a background worker that removes expired sessions.
type SessionCleanup struct {
	sessions Purger
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a worker that purges every interval.
func NewSessionCleanup(sessions Purger, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	return &SessionCleanup{
		sessions: sessions,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *SessionCleanup) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("session cleanup worker stopped")
	})
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce purges once and returns how many sessions were removed.
func (w *SessionCleanup) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	count, err := w.sessions.PurgeExpired(ctx)
	if err != nil {
		w.log.Error("failed to purge expired sessions", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("purged expired sessions", zap.Int64("count", count))
	}
	return count
}
