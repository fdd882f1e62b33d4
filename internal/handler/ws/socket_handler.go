package wshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/pkg/notifier/ws"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
)

const pongWait = 60 * time.Second

// Subscriber streams raw transaction event payloads for one user.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan []byte, func() error, error)
}

type WSHandler struct {
	manager    *ws.Manager
	subscriber Subscriber
	logger     *zap.Logger
}

func NewWSHandler(manager *ws.Manager, subscriber Subscriber, logger *zap.Logger) *WSHandler {
	return &WSHandler{manager: manager, subscriber: subscriber, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleTransactions upgrades HTTP -> WebSocket and streams the user's new transactions
func (h *WSHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// without a subscriber the socket still carries wallet state pushes
	var events <-chan []byte
	if h.subscriber != nil {
		ch, closeSub, err := h.subscriber.Subscribe(ctx, userID)
		if err != nil {
			h.logger.Error("transaction subscription failed", zap.String("user_id", userID), zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "realtime updates unavailable")
			return
		}
		defer closeSub()
		events = ch
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := h.manager.Add(userID, conn)
	defer h.manager.Remove(c)

	if events != nil {
		go h.forward(ctx, c, events)
	}

	// Reader loop: listen for pongs and client messages
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		c.Touch()
	}
}

func (h *WSHandler) forward(ctx context.Context, c *ws.Connection, events <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-events:
			if !ok {
				return
			}

			var ev domain.TransactionEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				h.logger.Warn("dropping malformed transaction event", zap.Error(err))
				continue
			}
			if ev.UserID != c.UserID {
				continue
			}

			if err := c.WriteJSON(ws.Message{Type: ev.EventType, Data: ev.Transaction}); err != nil {
				h.logger.Warn("failed WS send", zap.String("user_id", c.UserID), zap.Error(err))
				return
			}
		}
	}
}
