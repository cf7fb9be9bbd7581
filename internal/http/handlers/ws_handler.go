package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/auth"
	"github.com/partyhoard/backend/internal/config"
	"github.com/partyhoard/backend/internal/events"
	"go.uber.org/zap"
)

// messageWriter is the write side of a websocket connection.
type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// wsClient serializes writes to one socket. The subscriber goroutine and the
// join/leave paths of other connections both broadcast, and the websocket
// library forbids concurrent writers on a single connection.
type wsClient struct {
	mu sync.Mutex
	w  messageWriter
}

func (c *wsClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.WriteMessage(websocket.TextMessage, data)
}

// WSHub fans inventory events out to every viewer subscribed to that
// inventory. It consumes the Redis stream once and routes locally, so any
// number of API replicas can serve sockets for the same party.
type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]*wsClient
}

func NewWSHub(cfg *config.Config, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]*wsClient),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamInventory, func(event events.Event) {
		inventoryID, err := uuid.Parse(event.InventoryID)
		if err != nil {
			h.log.Warn("event with bad inventory id", zap.String("inventory_id", event.InventoryID))
			return
		}
		h.broadcast(inventoryID, event)
	})
}

func (h *WSHub) broadcast(inventoryID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, len(h.connections[inventoryID]))
	copy(clients, h.connections[inventoryID])
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.send(data)
	}
}

// viewerCount broadcasts how many sockets are watching an inventory. Sent on
// every join and leave, local to this instance.
func (h *WSHub) viewerCount(inventoryID uuid.UUID) {
	h.mu.RLock()
	n := len(h.connections[inventoryID])
	h.mu.RUnlock()

	h.broadcast(inventoryID, events.Event{
		Type:        events.EventConnectionCount,
		InventoryID: inventoryID.String(),
		Payload:     map[string]any{"viewers": n},
	})
}

func (h *WSHub) register(inventoryID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	h.connections[inventoryID] = append(h.connections[inventoryID], c)
	h.mu.Unlock()
}

func (h *WSHub) deregister(inventoryID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	clients := h.connections[inventoryID]
	for i, existing := range clients {
		if existing == c {
			h.connections[inventoryID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.connections[inventoryID]) == 0 {
		delete(h.connections, inventoryID)
	}
	h.mu.Unlock()
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Browsers cannot set headers on WebSocket requests, so the session
	// token rides in the query string.
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseToken(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	inventoryID := claims.InventoryID
	client := &wsClient{w: conn}

	h.register(inventoryID, client)
	h.viewerCount(inventoryID)

	defer func() {
		h.deregister(inventoryID, client)
		conn.Close()
		h.viewerCount(inventoryID)
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
