package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-consultancy-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans session snapshots out to the browser tabs watching each
// session. One session can have several watchers (multiple tabs), and
// with Redis attached snapshots reach watchers on other instances too.
type Hub struct {
	// watchers map: SessionID -> connected clients
	watchers map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil in single-node
	// deployments.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		watchers:   make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.watchers[client.SessionID] = append(h.watchers[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher registered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.watchers[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.watchers[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.watchers[client.SessionID]) == 0 {
					delete(h.watchers, client.SessionID)
					h.logger.Info("Hub", "Last watcher left session", map[string]interface{}{
						"session_id": client.SessionID,
					})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a session snapshot to every watcher of the session, then
// relays it over Redis so watchers connected to other instances get it.
func (h *Hub) Send(sessionID uuid.UUID, snapshot interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "session.updated",
		"data": snapshot,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize snapshot", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionID.String(),
			"message":           json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "session_events", payload)
	}
}

func (h *Hub) deliverLocal(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.watchers[sessionID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Watcher buffer full, dropping connection", map[string]interface{}{
				"session_id": sessionID,
			})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers only
	// to sessions it holds watchers for.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "session_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		sid, err := uuid.Parse(payload.TargetSessionID)
		if err != nil {
			continue
		}

		h.deliverLocal(sid, payload.Message)
	}
}
