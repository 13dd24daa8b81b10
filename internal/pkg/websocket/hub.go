package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

// AllKinds is the room of clients that follow every content kind
const AllKinds = "all"

// Hub maintains the set of active feed clients and pushes content events to them
type Hub struct {
	// Registered clients organized by followed kind
	clients map[string]map[*Client]bool

	// Channel for events to fan out
	broadcast chan *FeedMessage

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// FeedMessage is what a feed client receives for each new content item
type FeedMessage struct {
	Type      string    `json:"type"`
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"ownerId"`
	OwnerName string    `json:"ownerName"`
	IsPublic  bool      `json:"isPublic"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *FeedMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.kind]; !ok {
		h.clients[client.kind] = make(map[*Client]bool)
	}
	h.clients[client.kind][client] = true

	h.logger.Info().
		Str("kind", client.kind).
		Str("userID", client.userID).
		Msg("Feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	room, ok := h.clients[client.kind]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.clients, client.kind)
	}

	h.logger.Info().
		Str("kind", client.kind).
		Str("userID", client.userID).
		Msg("Feed client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.clients {
		for client := range room {
			h.removeLocked(client)
		}
	}
}

// broadcastMessage sends message to the followers of its kind and of every kind.
// Private items only reach their owner and admins.
func (h *Hub) broadcastMessage(message *FeedMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("id", message.ID).Msg("Failed to marshal feed message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, kind := range []string{message.Kind, AllKinds} {
		for client := range h.clients[kind] {
			if !client.canSee(message) {
				continue
			}
			select {
			case client.send <- data:
				sent++
			default:
				// slow client, drop it
				h.removeLocked(client)
			}
		}
	}

	h.logger.Debug().
		Str("kind", message.Kind).
		Int("clientCount", sent).
		Msg("Feed message broadcasted")
}

// ClientsCount returns the number of clients following kind
func (h *Hub) ClientsCount(kind string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[kind])
}

// Name identifies the hub as an event subscriber
func (h *Hub) Name() string { return "websocket-feed" }

// Handle queues a content event for broadcast
func (h *Hub) Handle(ctx context.Context, evt events.ContentCreated) error {
	msg := &FeedMessage{
		Type:      "content.created",
		Kind:      evt.Kind,
		ID:        evt.ID,
		Title:     evt.Title,
		OwnerID:   evt.OwnerID,
		OwnerName: evt.OwnerName,
		IsPublic:  evt.Public,
		Timestamp: evt.CreatedAt,
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
