package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"signoff-api/internal/notifier"
	"signoff-api/internal/response"
	"signoff-api/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler relays project events from redis to connected clients.
// The stream is one-way; inbound frames are drained and ignored.
type WSHandler struct {
	resolver service.TokenResolver
	notifier *notifier.RedisNotifier
	logger   *zap.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(resolver service.TokenResolver, n *notifier.RedisNotifier, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		resolver: resolver,
		notifier: n,
		logger:   logger,
	}
}

// HandleEvents upgrades the connection and relays the project's event
// channel. Either capability token grants access; events carry no data
// beyond the refetch hint, so the public role may listen too.
func (h *WSHandler) HandleEvents(c *gin.Context) {
	identity, err := h.resolver.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or unknown token")
		return
	}

	if h.notifier == nil {
		response.SendError(c, http.StatusServiceUnavailable, response.ErrCodeInternal, "Event stream not available")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	pubsub := h.notifier.Subscribe(c.Request.Context(), identity.ProjectID)

	done := make(chan struct{})

	go h.readPump(conn, done)
	h.writePump(conn, pubsub.Channel(), done)

	pubsub.Close()
	conn.Close()
}

// readPump drains inbound frames so pong handling works and close
// frames are noticed
func (h *WSHandler) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards redis messages and keeps the connection alive
// with pings
func (h *WSHandler) writePump(conn *websocket.Conn, events <-chan *redis.Message, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
