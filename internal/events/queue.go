package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("event queue is shutting down")

// Queue publishes events from a bounded buffer on background workers.
type Queue struct {
	pub     Publisher
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Event
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Event, n)
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(pub Publisher, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		pub:     pub,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Second,
		ch:      make(chan Event, 64),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("events.worker.started", "worker_id", workerID)

				for ev := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.pub.Publish(ctx, ev)
					cancel()
					if err != nil {
						q.logger.Error("events.worker.publish_failed", "worker_id", workerID, "event_id", ev.EventID, "error", err)
					}
				}

				q.logger.Debug("events.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the buffer is full, until ctx is done or Shutdown starts.
func (q *Queue) Enqueue(ctx context.Context, ev Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("events.enqueue.closed", "event_id", ev.EventID)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- ev:
		return nil
	default:
	}
	q.logger.Warn("events.enqueue.backpressure", "event_id", ev.EventID, "queued", len(q.ch))
	select {
	case q.ch <- ev:
		return nil
	case <-q.done:
		q.logger.Warn("events.enqueue.closed", "event_id", ev.EventID)
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake, releases blocked senders and waits for queued events to be published.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	// no sender can reach q.ch once this returns
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("events.queue.shutdown_interrupted")
	case <-done:
		q.logger.Info("events.queue.drained")
	}
}
