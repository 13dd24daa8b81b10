// Package events is the in-process publish/subscribe bus for domain events.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
)

// Content kinds carried by ContentCreated
const (
	KindNote       = "note"
	KindAssignment = "assignment"
	KindResource   = "resource"
	KindDriveFile  = "drive_file"
)

// ContentCreated is published after a content item has been persisted
type ContentCreated struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	OwnerName string    `json:"ownerName"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Public    bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher is what services depend on
type Publisher interface {
	Publish(ctx context.Context, evt ContentCreated)
}

// Subscriber handles events delivered by the bus
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, evt ContentCreated) error
}

// SubscriberFunc adapts a function into a Subscriber
type SubscriberFunc struct {
	ID string
	Fn func(ctx context.Context, evt ContentCreated) error
}

// Name returns the subscriber name
func (s SubscriberFunc) Name() string { return s.ID }

// Handle calls the function
func (s SubscriberFunc) Handle(ctx context.Context, evt ContentCreated) error { return s.Fn(ctx, evt) }

// Bus fans events out to subscribers. Each delivery runs on its own goroutine
// with panic recovery, so a failing subscriber never reaches the publisher.
type Bus struct {
	logger  zerolog.Logger
	timeout time.Duration

	mu          sync.RWMutex
	subscribers []Subscriber
	wg          sync.WaitGroup
}

// NewBus creates a bus whose deliveries are bounded by timeout
func NewBus(logger zerolog.Logger, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bus{logger: logger, timeout: timeout}
}

// Subscribe registers a subscriber
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
	b.logger.Info().Str("subscriber", s.Name()).Msg("Event subscriber registered")
}

// Publish delivers evt to every subscriber asynchronously
func (b *Bus) Publish(ctx context.Context, evt ContentCreated) {
	metrics.EventsPublished.WithLabelValues(evt.Kind).Inc()

	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subscribers...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.wg.Add(1)
		go b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s Subscriber, evt ContentCreated) {
	defer b.wg.Done()

	// Deliveries outlive the request that published them
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("subscriber panic: %v", r)
			}
		}()
		return s.Handle(ctx, evt)
	}()
	if err != nil {
		metrics.SubscriberFailures.WithLabelValues(s.Name()).Inc()
		b.logger.Error().Err(err).
			Str("subscriber", s.Name()).
			Str("kind", evt.Kind).
			Str("id", evt.ID).
			Msg("Event subscriber failed")
	}
}

// Wait blocks until every in-flight delivery has finished
func (b *Bus) Wait() {
	b.wg.Wait()
}
