package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

// IdentifyFunc extracts the caller of a request. An empty userID means anonymous.
type IdentifyFunc func(c *gin.Context) (userID string, admin bool)

var followableKinds = map[string]bool{
	AllKinds:              true,
	events.KindNote:       true,
	events.KindAssignment: true,
	events.KindResource:   true,
	events.KindDriveFile:  true,
}

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	identify IdentifyFunc
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, identify IdentifyFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		identify: identify,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to the live content feed
// @Description Upgrades the connection to a WebSocket that receives a message for every new note, assignment, resource or drive file the caller may see.
// @Tags feed, websocket
// @Param kind query string false "note, assignment, resource, drive_file or all (default)"
// @Param token query string false "Access token for private items"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Unknown kind"
// @Router /feed/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	kind := c.DefaultQuery("kind", AllKinds)
	if !followableKinds[kind] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VAL_001", "message": "Unknown feed kind: " + kind},
		})
		return
	}

	var (
		userID string
		admin  bool
	)
	if h.identify != nil {
		userID, admin = h.identify(c)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("kind", kind).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		kind:   kind,
		userID: userID,
		admin:  admin,
		logger: h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("kind", kind).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Feed connection established")
}
