// Package notify delivers persisted in-app notifications over external
// channels (email, push) without blocking the request that produced them.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
)

// Message is a notification addressed to a resolved recipient.
type Message struct {
	UserID    int32
	Email     string
	Name      string
	Title     string
	Body      string
	Type      domain.NotificationType
	RelatedID *int32
}

// Channel is one external delivery mechanism.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// UserLookup resolves recipient contact details.
type UserLookup interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type Options struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	Backoff    time.Duration
}

// Dispatcher fans notifications out to its channels from a bounded queue.
// Dispatch never blocks; when the queue is full the notification is dropped
// with a warning since it is already stored in the database.
type Dispatcher struct {
	users    UserLookup
	channels []Channel
	opts     Options
	jobs     chan domain.Notification
	wg       sync.WaitGroup
	dropped  atomic.Int64
	sent     atomic.Int64

	// mu guards closed; Dispatch holds it for reading while sending on jobs.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(users UserLookup, opts Options, channels ...Channel) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Dispatcher{
		users:    users,
		channels: channels,
		opts:     opts,
		jobs:     make(chan domain.Notification, opts.QueueSize),
	}
}

// Start launches the workers. They exit once Stop drains the queue or ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	logger.Info("Notification dispatcher started", "workers", d.opts.Workers, "channels", len(d.channels))
}

// Stop closes the queue and waits for in-flight deliveries. Later Dispatch
// calls count as dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) Dispatch(ctx context.Context, notes ...domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(int64(len(notes)))
		logger.WarnContext(ctx, "Notification dispatcher stopped, dropping deliveries", "count", len(notes))
		return
	}
	for _, n := range notes {
		select {
		case d.jobs <- n:
		default:
			d.dropped.Add(1)
			logger.WarnContext(ctx, "Notification queue full, dropping delivery",
				"userID", n.UserID, "title", n.Title)
		}
	}
}

// Dropped reports how many notifications were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Sent reports how many channel deliveries succeeded.
func (d *Dispatcher) Sent() int64 { return d.sent.Load() }

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Notification worker stopping", "worker", id)
			return
		case n, ok := <-d.jobs:
			if !ok {
				return
			}
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) {
	msg := Message{
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Message,
		Type:      n.Type,
		RelatedID: n.RelatedID,
	}
	if d.users != nil {
		u, err := d.users.GetByID(ctx, n.UserID)
		if err != nil {
			logger.Warn("Could not resolve notification recipient", "userID", n.UserID, "error", err)
		} else {
			msg.Email, msg.Name = u.Email, u.FullName
		}
	}

	for _, ch := range d.channels {
		err := d.sendWithRetry(ctx, ch, msg)
		if errors.Is(err, ErrSkipped) {
			continue
		}
		if err != nil {
			logger.Error("Notification delivery failed", "channel", ch.Name(), "userID", n.UserID, "error", err)
			continue
		}
		d.sent.Add(1)
	}
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, ch Channel, msg Message) error {
	var err error
	for attempt := 0; attempt <= d.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * d.opts.Backoff
			logger.Debug("Retrying notification", "channel", ch.Name(), "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return errors.Join(err, ctx.Err())
			case <-time.After(backoff):
			}
		}
		logger.ExternalServiceCall(ch.Name(), "Send", "userID", msg.UserID)
		err = ch.Send(ctx, msg)
		logger.ExternalServiceResult(ch.Name(), "Send", err)
		if err == nil || errors.Is(err, ErrSkipped) {
			return err
		}
	}
	return err
}

// ErrSkipped is returned by a channel that has nothing to do for a message,
// for example email delivery to a user without an address.
var ErrSkipped = errors.New("notification skipped by channel")
