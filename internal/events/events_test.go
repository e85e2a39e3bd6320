package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	amqp "github.com/rabbitmq/amqp091-go"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeChannel struct {
	exchange, key string
	msgs          []amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPPublisherMessage(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(AMQPConfig{Exchange: "skogsprospekt", RoutingKey: "analysis.completed"}, ch, quiet())
	ev := NewAnalysisCompleted("req-1", "uploads/a.pdf", "gpt-4.1-mini", "pdf_text", map[string]bool{"summary": true, "risk": false})

	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ch.exchange != "skogsprospekt" || ch.key != "analysis.completed" || len(ch.msgs) != 1 {
		t.Fatalf("exchange=%q key=%q msgs=%d", ch.exchange, ch.key, len(ch.msgs))
	}
	msg := ch.msgs[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Headers["x-request-id"] != "req-1" {
		t.Errorf("headers = %v", msg.Headers)
	}

	var got Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ev, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestAMQPPublisherError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newAMQPPublisher(AMQPConfig{}, ch, quiet())
	if err := p.Publish(context.Background(), NewAnalysisCompleted("", "k", "m", "s", nil)); err == nil {
		t.Fatal("expected error")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	gate   chan struct{}
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestQueueDrainsOnShutdown(t *testing.T) {
	pub := &recordingPublisher{}
	q := NewQueue(pub, quiet(), WithWorkers(3), WithQueueSize(8))
	for i := 0; i < 20; i++ {
		if err := q.Enqueue(context.Background(), NewAnalysisCompleted("", "k", "m", "s", nil)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if len(pub.events) != 20 {
		t.Errorf("published %d events, want 20", len(pub.events))
	}
	if err := q.Enqueue(context.Background(), Event{}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue after shutdown = %v", err)
	}
}

func TestQueueBackpressureHonorsContext(t *testing.T) {
	pub := &recordingPublisher{gate: make(chan struct{})}
	q := NewQueue(pub, quiet(), WithWorkers(1), WithQueueSize(1))

	// one event held by the worker, one in the buffer
	_ = q.Enqueue(context.Background(), Event{EventID: "1"})
	_ = q.Enqueue(context.Background(), Event{EventID: "2"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Event{EventID: "3"})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Enqueue = %v", err)
	}

	close(pub.gate)
	q.Shutdown(context.Background())
}

func TestShutdownReleasesBlockedEnqueue(t *testing.T) {
	pub := &recordingPublisher{gate: make(chan struct{})}
	q := NewQueue(pub, quiet(), WithWorkers(1), WithQueueSize(1))
	_ = q.Enqueue(context.Background(), Event{EventID: "1"})
	_ = q.Enqueue(context.Background(), Event{EventID: "2"})

	// the worker holds one event and the buffer is full, so this send blocks
	enqueued := make(chan error, 1)
	go func() { enqueued <- q.Enqueue(context.Background(), Event{EventID: "3"}) }()

	stopped := make(chan struct{})
	go func() { defer close(stopped); q.Shutdown(context.Background()) }()

	select {
	case err := <-enqueued:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("Enqueue = %v, want ErrQueueClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue still blocked after Shutdown")
	}

	close(pub.gate)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}
	if len(pub.events) != 2 {
		t.Errorf("published %d events, want 2", len(pub.events))
	}
}

func TestNoopPublisher(t *testing.T) {
	if err := (NoopPublisher{Logger: quiet()}).Publish(context.Background(), Event{}); err != nil {
		t.Fatal(err)
	}
}
