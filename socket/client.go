package socket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sketchsync/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows connections from the dev frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection. RoomID is empty until the
// client sends a join-room frame and is only ever touched by the hub.
type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	RoomID string
	Send   chan []byte
}

// ServeWs upgrades an authenticated HTTP request to a websocket and wires
// the connection into the hub. userID comes from the auth middleware.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("read: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(rawMessage, &env); err != nil {
			logger.Sugar.Errorf("unmarshal frame: %v", err)
			c.Hub.sendError(c, "malformed frame")
			continue
		}

		// The user id is server-authoritative; never trust the frame's.
		env.UserID = c.UserID

		c.Hub.Inbound <- inboundMessage{client: c, env: env}
	}
}

func (c *Client) writePump() {
	// A ping every 30s keeps the connection alive and detects drops.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
