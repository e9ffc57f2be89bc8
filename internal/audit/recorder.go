// Package audit writes activity log entries in the background.
package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/repository"
)

// Recorder buffers entries and persists them from a single goroutine.
// Record never blocks the caller; entries that do not fit are dropped.
type Recorder struct {
	repo    repository.ActivityLogRepository
	entries chan domain.ActivityLog
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func NewRecorder(repo repository.ActivityLogRepository, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	return &Recorder{
		repo:    repo,
		entries: make(chan domain.ActivityLog, bufferSize),
		done:    make(chan struct{}),
	}
}

func (r *Recorder) Start() {
	go r.run()
}

// Stop flushes the buffer and waits for the writer to exit. Entries recorded
// afterwards are dropped.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) Record(entry domain.ActivityLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		logger.Warn("Activity recorder stopped, dropping entry", "action", entry.Action)
		return
	}
	select {
	case r.entries <- entry:
	default:
		r.dropped.Add(1)
		logger.Warn("Activity log buffer full, dropping entry", "action", entry.Action, "entityType", entry.EntityType)
	}
}

func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.repo.Create(ctx, &entry); err != nil {
			logger.Error("Failed to write activity log", "action", entry.Action, "error", err)
		}
		cancel()
	}
}
