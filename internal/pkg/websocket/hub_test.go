package websocket

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

func feedClient(h *Hub, kind, userID string, admin bool, buffer int) *Client {
	return &Client{hub: h, send: make(chan []byte, buffer), kind: kind, userID: userID, admin: admin}
}

func received(c *Client) []FeedMessage {
	var out []FeedMessage
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m FeedMessage
			Expect(json.Unmarshal(data, &m)).To(Succeed())
			out = append(out, m)
		default:
			return out
		}
	}
}

var _ = Describe("Hub", func() {
	var hub *Hub

	BeforeEach(func() {
		hub = NewHub(zerolog.Nop())
	})

	Describe("broadcastMessage", func() {
		var notes, everything, owner, admin, stranger *Client

		BeforeEach(func() {
			notes = feedClient(hub, events.KindNote, "", false, 4)
			everything = feedClient(hub, AllKinds, "", false, 4)
			owner = feedClient(hub, AllKinds, "u1", false, 4)
			admin = feedClient(hub, events.KindNote, "a1", true, 4)
			stranger = feedClient(hub, events.KindAssignment, "u2", false, 4)
			for _, c := range []*Client{notes, everything, owner, admin, stranger} {
				hub.registerClient(c)
			}
		})

		Specify("public items reach followers of the kind and of every kind", func() {
			hub.broadcastMessage(&FeedMessage{Type: "content.created", Kind: events.KindNote, ID: "n1", IsPublic: true})

			Expect(received(notes)).To(HaveLen(1))
			Expect(received(everything)).To(HaveLen(1))
			Expect(received(owner)).To(HaveLen(1))
			Expect(received(admin)).To(HaveLen(1))
			Expect(received(stranger)).To(BeEmpty())
		})

		Specify("private items only reach the owner and admins", func() {
			hub.broadcastMessage(&FeedMessage{Kind: events.KindNote, ID: "n2", OwnerID: "u1"})

			Expect(received(notes)).To(BeEmpty())
			Expect(received(everything)).To(BeEmpty())
			msgs := received(owner)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].ID).To(Equal("n2"))
			Expect(received(admin)).To(HaveLen(1))
		})

		Specify("slow clients are dropped", func() {
			slow := feedClient(hub, events.KindResource, "", false, 0)
			hub.registerClient(slow)
			Expect(hub.ClientsCount(events.KindResource)).To(Equal(1))

			hub.broadcastMessage(&FeedMessage{Kind: events.KindResource, IsPublic: true})
			Expect(hub.ClientsCount(events.KindResource)).To(Equal(0))
			_, open := <-slow.send
			Expect(open).To(BeFalse())
		})
	})

	Specify("Run delivers handled events and closes clients on shutdown", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			hub.Run(ctx)
			close(done)
		}()

		c := feedClient(hub, AllKinds, "", false, 4)
		hub.register <- c
		Eventually(func() int { return hub.ClientsCount(AllKinds) }).Should(Equal(1))

		Expect(hub.Handle(context.Background(), events.ContentCreated{
			Kind: events.KindAssignment, ID: "a1", Title: "Lab", Public: true,
		})).To(Succeed())

		var data []byte
		Eventually(c.send).Should(Receive(&data))
		var m FeedMessage
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m.Type).To(Equal("content.created"))
		Expect(m.Title).To(Equal("Lab"))

		cancel()
		Eventually(done).Should(BeClosed())
		Expect(hub.ClientsCount(AllKinds)).To(Equal(0))
	})
})
