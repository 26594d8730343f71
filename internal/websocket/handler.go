package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to the hub as a watcher of
// one session and blocks until the connection drops.
func ServeWs(hub *Hub, c *websocket.Conn, userID, sessionID uuid.UUID) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		UserID:    userID,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
