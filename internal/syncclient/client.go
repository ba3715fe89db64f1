// Package syncclient is the client half of the sync protocol: it
// classifies outgoing mutations as ephemeral previews or durable commits,
// throttles the previews, and applies inbound frames to the local shape
// list.
package syncclient

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sketchsync/internal/shape"
	"sketchsync/pkg/logger"
	"sketchsync/socket"
)

// Throttle windows per shape kind. Freehand strokes stream points fast
// and get the tightest window; everything else coalesces over 50ms.
const (
	pencilThrottle  = 16 * time.Millisecond
	defaultThrottle = 50 * time.Millisecond
)

// SendFunc delivers one frame to the server.
type SendFunc func(env socket.Envelope) error

type lastSent struct {
	box  shape.Rect
	line shape.LineData
	at   time.Time
}

// Client keeps the local mirror of a room's shape list and the outgoing
// message classification state.
type Client struct {
	roomID string
	userID string
	send   SendFunc
	now    func() time.Time

	mu       sync.Mutex
	shapes   shape.List
	sent     map[string]lastSent
	onChange func()
}

// New builds a sync client over an arbitrary send function; tests inject
// their own clock with SetClock.
func New(roomID, userID string, send SendFunc) *Client {
	return &Client{
		roomID: roomID,
		userID: userID,
		send:   send,
		now:    time.Now,
		sent:   make(map[string]lastSent),
	}
}

// SetClock overrides the throttle clock.
func (c *Client) SetClock(now func() time.Time) { c.now = now }

// OnChange registers a callback fired after any inbound frame mutates the
// local list; the renderer hangs off this.
func (c *Client) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Shapes returns a snapshot of the local list.
func (c *Client) Shapes() shape.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shapes.Clone()
}

// Apply replaces or appends a shape locally without sending anything;
// this is the selection controller's local-echo path.
func (c *Client) Apply(s shape.Shape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shapes.Replace(s) {
		c.shapes = c.shapes.Append(s)
	}
}

// throttled reports whether an ephemeral frame for this shape should be
// suppressed: geometry unchanged since the last send AND the window has
// not yet elapsed. A send updates the bookkeeping.
func (c *Client) throttled(s shape.Shape) bool {
	window := defaultThrottle
	if s.Kind == shape.Pencil {
		window = pencilThrottle
	}

	prev, ok := c.sent[s.ID]
	var line shape.LineData
	if s.Line != nil {
		line = *s.Line
	}
	nowAt := c.now()
	if ok && prev.box == s.Box && prev.line == line && nowAt.Sub(prev.at) < window {
		return true
	}
	c.sent[s.ID] = lastSent{box: s.Box, line: line, at: nowAt}
	return false
}

// JoinRoom announces the client to a room, optionally seeding it as the
// creator.
func (c *Client) JoinRoom(role string, seed shape.List) error {
	return c.send(socket.NewEnvelope(socket.JoinRoomType, c.roomID, c.userID,
		socket.JoinRoomPayload{UserRole: role, Shapes: seed}))
}

// LeaveRoom announces departure.
func (c *Client) LeaveRoom() error {
	return c.send(socket.NewEnvelope(socket.LeaveRoomType, c.roomID, c.userID, nil))
}

// SendDraw streams a first-time in-progress shape to peers. Throttled.
func (c *Client) SendDraw(s shape.Shape) error {
	c.mu.Lock()
	suppressed := c.throttled(s)
	c.mu.Unlock()
	if suppressed {
		return nil
	}
	return c.send(socket.NewEnvelope(socket.DrawType, c.roomID, c.userID,
		socket.DrawPayload{Message: s}))
}

// SendPreviewUpdate streams an in-progress drag/resize of an existing
// shape. Throttled, flagged, never logged or persisted server-side.
func (c *Client) SendPreviewUpdate(s shape.Shape) error {
	c.mu.Lock()
	suppressed := c.throttled(s)
	c.mu.Unlock()
	if suppressed {
		return nil
	}
	return c.send(socket.NewEnvelope(socket.UpdateType, c.roomID, c.userID,
		socket.UpdatePayload{ID: s.ID, NewMessage: s, Flag: socket.UpdatePreviewFlag}))
}

// SendCreate commits a new shape. Durable frames are never throttled and
// always carry the complete payload.
func (c *Client) SendCreate(s shape.Shape, previewID string) error {
	c.mu.Lock()
	delete(c.sent, s.ID)
	c.mu.Unlock()
	return c.send(socket.NewEnvelope(socket.CreateType, c.roomID, c.userID,
		socket.CreatePayload{Message: s, PreviewID: previewID}))
}

// SendDelete commits a removal.
func (c *Client) SendDelete(id string) error {
	c.mu.Lock()
	delete(c.sent, id)
	c.mu.Unlock()
	return c.send(socket.NewEnvelope(socket.DeleteType, c.roomID, c.userID,
		socket.DeletePayload{ID: id}))
}

// SendUpdate commits a full replacement of an existing shape.
func (c *Client) SendUpdate(s shape.Shape) error {
	c.mu.Lock()
	delete(c.sent, s.ID)
	c.mu.Unlock()
	return c.send(socket.NewEnvelope(socket.UpdateType, c.roomID, c.userID,
		socket.UpdatePayload{ID: s.ID, NewMessage: s}))
}

// SendCursor reports the local pointer for presence. Never logged.
func (c *Client) SendCursor(username string, pos shape.Point) error {
	return c.send(socket.NewEnvelope(socket.CursorType, c.roomID, c.userID,
		socket.CursorPayload{Username: username, Pos: pos, TS: c.now().UnixMilli()}))
}

// Undo asks the server to revert the caller's most recent durable
// operation; the result comes back as a normal create/delete/update frame.
func (c *Client) Undo() error {
	return c.send(socket.NewEnvelope(socket.UndoType, c.roomID, c.userID, nil))
}

// Redo replays the caller's most recently undone operation.
func (c *Client) Redo() error {
	return c.send(socket.NewEnvelope(socket.RedoType, c.roomID, c.userID, nil))
}

// EmitPreview and EmitDurable satisfy the selection controller's Emitter.
func (c *Client) EmitPreview(s shape.Shape) { _ = c.SendPreviewUpdate(s) }
func (c *Client) EmitDurable(s shape.Shape) { _ = c.SendUpdate(s) }

// ApplyInbound folds one server frame into the local list. Unknown or
// irrelevant frames are ignored; the list converges on whatever the
// server last said.
func (c *Client) ApplyInbound(env socket.Envelope) error {
	payload, err := env.Decode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	changed := false
	switch p := payload.(type) {
	case socket.CreatePayload:
		if c.shapes.Find(p.Message.ID) >= 0 {
			c.shapes.Replace(p.Message)
		} else {
			c.shapes = c.shapes.Append(p.Message)
		}
		changed = true
	case socket.DrawPayload:
		if !c.shapes.Replace(p.Message) {
			c.shapes = c.shapes.Append(p.Message)
		}
		changed = true
	case socket.DeletePayload:
		changed = c.shapes.Remove(p.ID)
	case socket.UpdatePayload:
		s := p.NewMessage
		if s.ID == "" {
			s.ID = p.ID
		}
		if !c.shapes.Replace(s) {
			c.shapes = c.shapes.Append(s)
		}
		changed = true
	case socket.SyncPayload:
		c.shapes = p.Messages.Clone()
		changed = true
	case socket.ErrorPayload:
		logger.Sugar.Warnf("server error: %s", p.Message)
	}
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
	return nil
}

// Conn couples a Client to a live websocket.
type Conn struct {
	*Client
	ws *websocket.Conn
}

// Dial connects to the server and returns a connected client. The caller
// runs Listen to pump inbound frames.
func Dial(ctx context.Context, url, roomID, userID string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	conn := &Conn{ws: ws}
	conn.Client = New(roomID, userID, func(env socket.Envelope) error {
		return ws.WriteJSON(env)
	})
	return conn, nil
}

// Listen reads frames until the connection drops or ctx is cancelled.
func (c *Conn) Listen(ctx context.Context) error {
	defer c.ws.Close()
	go func() {
		<-ctx.Done()
		c.ws.Close()
	}()
	for {
		var env socket.Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := c.ApplyInbound(env); err != nil {
			logger.Sugar.Warnf("apply inbound: %v", err)
		}
	}
}

// Close tears the connection down.
func (c *Conn) Close() error { return c.ws.Close() }
