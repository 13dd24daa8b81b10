package events_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

type collector struct {
	mu   sync.Mutex
	seen []events.ContentCreated
}

func (c *collector) sub(name string) events.SubscriberFunc {
	return events.SubscriberFunc{ID: name, Fn: func(_ context.Context, evt events.ContentCreated) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.seen = append(c.seen, evt)
		return nil
	}}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

var _ = Describe("Bus", func() {
	var bus *events.Bus

	BeforeEach(func() {
		bus = events.NewBus(zerolog.Nop(), time.Second)
	})

	Specify("every subscriber receives every event", func() {
		a, b := &collector{}, &collector{}
		bus.Subscribe(a.sub("a"))
		bus.Subscribe(b.sub("b"))

		for i := 0; i < 5; i++ {
			bus.Publish(context.Background(), events.ContentCreated{Kind: events.KindNote})
		}
		bus.Wait()

		Expect(a.count()).To(Equal(5))
		Expect(b.count()).To(Equal(5))
	})

	Specify("failing and panicking subscribers do not affect the others", func() {
		good := &collector{}
		bus.Subscribe(events.SubscriberFunc{ID: "err", Fn: func(context.Context, events.ContentCreated) error {
			return errors.New("nope")
		}})
		bus.Subscribe(events.SubscriberFunc{ID: "panic", Fn: func(context.Context, events.ContentCreated) error {
			panic("boom")
		}})
		bus.Subscribe(good.sub("good"))

		Expect(func() {
			bus.Publish(context.Background(), events.ContentCreated{Kind: events.KindResource})
			bus.Wait()
		}).NotTo(Panic())
		Expect(good.count()).To(Equal(1))
	})

	Specify("deliveries outlive the publishing context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var deliveredErr error
		bus.Subscribe(events.SubscriberFunc{ID: "ctx", Fn: func(ctx context.Context, _ events.ContentCreated) error {
			deliveredErr = ctx.Err()
			return nil
		}})

		cancel()
		bus.Publish(ctx, events.ContentCreated{Kind: events.KindNote})
		bus.Wait()
		Expect(deliveredErr).To(BeNil())
	})

	Specify("deliveries are bounded by the bus timeout", func() {
		bus = events.NewBus(zerolog.Nop(), 10*time.Millisecond)
		var deliveredErr error
		bus.Subscribe(events.SubscriberFunc{ID: "slow", Fn: func(ctx context.Context, _ events.ContentCreated) error {
			<-ctx.Done()
			deliveredErr = ctx.Err()
			return deliveredErr
		}})

		bus.Publish(context.Background(), events.ContentCreated{Kind: events.KindNote})
		bus.Wait()
		Expect(deliveredErr).To(Equal(context.DeadlineExceeded))
	})
})
