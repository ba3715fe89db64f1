package socket

import (
	"encoding/json"
	"sync"
	"time"

	"sketchsync/internal/shape"
	"sketchsync/pkg/logger"
)

// ShapeStore is the external persistence gateway. Every call the hub makes
// into it is fire-and-forget: failures are logged and never surfaced to
// clients, and in-memory room state stays authoritative.
type ShapeStore interface {
	LoadShapes(roomID string) (shape.List, error)
	UpsertShape(roomID string, s shape.Shape) error
	DeleteShape(roomID, shapeID string) error
	ReplaceShapes(roomID string, shapes shape.List) error
}

// Room is one collaboration unit: a shared shape list, its history, and
// the latest cursor per user.
type Room struct {
	ID      string
	Shapes  shape.List
	History *History

	cursors    map[string]CursorPayload
	cursorStop chan struct{} // non-nil while the presence ticker runs
}

// inboundMessage pairs a frame with the connection it arrived on.
type inboundMessage struct {
	client *Client
	env    Envelope
}

// Hub coordinates every room. All mutations funnel through Run's loop, so
// each inbound message is handled to completion before the next; the
// mutex guards the maps against the cursor ticker and REST-side eviction.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Inbound    chan inboundMessage

	mu      sync.Mutex
	conns   map[string]*Client         // connID -> client
	rooms   map[string]*Room           // roomID -> room state
	members map[string]map[string]bool // roomID -> set of connIDs

	store          ShapeStore
	historySize    int
	cursorInterval time.Duration
}

// NewHub builds a hub over the given persistence gateway. store may be nil
// for a purely in-memory server.
func NewHub(store ShapeStore) *Hub {
	return &Hub{
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		Inbound:        make(chan inboundMessage, 64),
		conns:          make(map[string]*Client),
		rooms:          make(map[string]*Room),
		members:        make(map[string]map[string]bool),
		store:          store,
		historySize:    DefaultHistorySize,
		cursorInterval: 100 * time.Millisecond,
	}
}

// Run is the hub's event loop. Start it exactly once, in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.conns[client.ID] = client
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.conns[client.ID]; ok {
				h.detachLocked(client)
				delete(h.conns, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.Inbound:
			h.handleMessage(msg.client, msg.env)
		}
	}
}

// handleMessage validates and dispatches one frame. Validation failures
// produce an error frame on the offending connection; the connection
// stays open and no state is mutated.
func (h *Hub) handleMessage(c *Client, env Envelope) {
	payload, err := env.Decode()
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	if env.RoomID == "" {
		h.sendError(c, "missing roomId")
		return
	}
	if env.UserID == "" {
		h.sendError(c, "missing userId")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch p := payload.(type) {
	case JoinRoomPayload:
		h.joinLocked(c, env.RoomID, p)

	case EmptyPayload:
		switch env.Type {
		case LeaveRoomType:
			h.detachLocked(c)
			h.sendLocked(c, NewEnvelope(LeaveRoomSuccessType, env.RoomID, env.UserID, nil))
		case UndoType:
			h.undoLocked(env.RoomID, env.UserID)
		case RedoType:
			h.redoLocked(env.RoomID, env.UserID)
		case ResetCanvasType:
			h.resetLocked(env.RoomID, env.UserID)
		}

	case DrawPayload:
		// Ephemeral previews fan out to everyone but the sender; the
		// sender already renders its own in-progress shape locally.
		if _, ok := h.roomLocked(c, env.RoomID); !ok {
			return
		}
		h.broadcastLocked(env.RoomID, NewEnvelope(env.Type, env.RoomID, env.UserID, p), c.ID)

	case CreatePayload:
		h.createLocked(c, env, p)

	case DeletePayload:
		h.deleteLocked(c, env, p)

	case UpdatePayload:
		h.updateLocked(c, env, p)

	case SyncPayload:
		// A client asking for a resync gets a fresh snapshot.
		room, ok := h.roomLocked(c, env.RoomID)
		if !ok {
			return
		}
		h.sendLocked(c, NewEnvelope(SyncType, env.RoomID, env.UserID, SyncPayload{Messages: room.Shapes.Clone()}))

	case CursorPayload:
		if room, ok := h.rooms[env.RoomID]; ok {
			room.cursors[env.UserID] = p
		}
	}
}

func (h *Hub) roomLocked(c *Client, roomID string) (*Room, bool) {
	room, ok := h.rooms[roomID]
	if !ok {
		h.sendError(c, "unknown room")
	}
	return room, ok
}

func (h *Hub) joinLocked(c *Client, roomID string, p JoinRoomPayload) {
	if c.RoomID != "" && c.RoomID != roomID {
		h.detachLocked(c)
	}

	room, ok := h.rooms[roomID]
	if !ok {
		room = &Room{
			ID:      roomID,
			History: NewHistory(h.historySize),
			cursors: make(map[string]CursorPayload),
		}
		if h.store != nil {
			shapes, err := h.store.LoadShapes(roomID)
			if err != nil {
				logger.Sugar.Errorf("load shapes for room %s: %v", roomID, err)
			} else {
				room.Shapes = shapes
			}
		}
		h.rooms[roomID] = room
		h.members[roomID] = make(map[string]bool)
	}

	// A creator join seeds the room wholesale; the last such join wins.
	// This reconciles an offline-drafted board with a live session.
	if p.UserRole == RoleCreator && p.Shapes != nil {
		room.Shapes = p.Shapes.Clone()
		h.persist(func(s ShapeStore) error { return s.ReplaceShapes(roomID, room.Shapes.Clone()) })
	}

	h.members[roomID][c.ID] = true
	c.RoomID = roomID

	h.sendLocked(c, NewEnvelope(SyncType, roomID, c.UserID, SyncPayload{Messages: room.Shapes.Clone()}))

	if len(h.members[roomID]) >= 2 && room.cursorStop == nil {
		h.startCursorBroadcastLocked(room)
	}
}

// detachLocked removes a connection from its room and tears the room down
// when it empties.
func (h *Hub) detachLocked(c *Client) {
	roomID := c.RoomID
	if roomID == "" {
		return
	}
	c.RoomID = ""
	set, ok := h.members[roomID]
	if !ok {
		return
	}
	delete(set, c.ID)

	room := h.rooms[roomID]
	if room == nil {
		return
	}
	delete(room.cursors, c.UserID)

	if len(set) < 2 && room.cursorStop != nil {
		close(room.cursorStop)
		room.cursorStop = nil
	}
	if len(set) == 0 {
		delete(h.rooms, roomID)
		delete(h.members, roomID)
		logger.Sugar.Infof("closed empty room %s", roomID)
	}
}

func (h *Hub) createLocked(c *Client, env Envelope, p CreatePayload) {
	room, ok := h.roomLocked(c, env.RoomID)
	if !ok {
		return
	}
	if p.Message.ID == "" {
		h.sendError(c, "create-message requires a shape id")
		return
	}
	if room.Shapes.Find(p.Message.ID) >= 0 {
		h.sendError(c, "duplicate shape id")
		return
	}

	room.Shapes = room.Shapes.Append(p.Message.Clone())
	room.History.RecordDurable(Operation{
		Kind:    OpCreate,
		UserID:  env.UserID,
		ShapeID: p.Message.ID,
		Shape:   p.Message.Clone(),
	})
	h.persist(func(s ShapeStore) error { return s.UpsertShape(env.RoomID, p.Message) })

	// Durable frames go to every member including the sender, so the
	// sender's copy is canonicalized by the same apply path as everyone
	// else's.
	h.broadcastLocked(env.RoomID, NewEnvelope(CreateType, env.RoomID, env.UserID, p), "")
}

func (h *Hub) deleteLocked(c *Client, env Envelope, p DeletePayload) {
	room, ok := h.roomLocked(c, env.RoomID)
	if !ok {
		return
	}
	i := room.Shapes.Find(p.ID)
	if i < 0 {
		h.sendError(c, "unknown shape id")
		return
	}
	snapshot := room.Shapes[i].Clone()
	room.Shapes.Remove(p.ID)
	room.History.RecordDurable(Operation{
		Kind:    OpDelete,
		UserID:  env.UserID,
		ShapeID: p.ID,
		Shape:   snapshot,
	})
	h.persist(func(s ShapeStore) error { return s.DeleteShape(env.RoomID, p.ID) })

	h.broadcastLocked(env.RoomID, NewEnvelope(DeleteType, env.RoomID, env.UserID, p), "")
}

func (h *Hub) updateLocked(c *Client, env Envelope, p UpdatePayload) {
	room, ok := h.roomLocked(c, env.RoomID)
	if !ok {
		return
	}
	id := p.ID
	if id == "" {
		id = p.NewMessage.ID
	}
	i := room.Shapes.Find(id)
	if i < 0 {
		h.sendError(c, "unknown shape id")
		return
	}

	if p.Ephemeral() {
		// Preview updates mutate in place so late joiners see the
		// in-flight geometry, but they are never logged or persisted.
		room.Shapes[i] = p.NewMessage.Clone()
		h.broadcastLocked(env.RoomID, NewEnvelope(UpdateType, env.RoomID, env.UserID, p), c.ID)
		return
	}

	prev := room.Shapes[i].Clone()
	room.Shapes[i] = p.NewMessage.Clone()
	room.History.RecordDurable(Operation{
		Kind:    OpUpdate,
		UserID:  env.UserID,
		ShapeID: id,
		Prev:    prev,
		Next:    p.NewMessage.Clone(),
	})
	h.persist(func(s ShapeStore) error { return s.UpsertShape(env.RoomID, p.NewMessage) })

	h.broadcastLocked(env.RoomID, NewEnvelope(UpdateType, env.RoomID, env.UserID, p), "")
}

// undoLocked applies the inverse of the caller's most recent operation
// and broadcasts the resulting durable frame to every member.
func (h *Hub) undoLocked(roomID, userID string) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	op, ok := room.History.Undo(userID)
	if !ok {
		return // nothing of this user's in the log; silently ignored
	}

	switch op.Kind {
	case OpCreate:
		room.Shapes.Remove(op.ShapeID)
		h.persist(func(s ShapeStore) error { return s.DeleteShape(roomID, op.ShapeID) })
		h.broadcastLocked(roomID, NewEnvelope(DeleteType, roomID, userID, DeletePayload{ID: op.ShapeID}), "")
	case OpDelete:
		// The shape rejoins at the end of the z-order, not its original
		// position.
		room.Shapes = room.Shapes.Append(op.Shape.Clone())
		h.persist(func(s ShapeStore) error { return s.UpsertShape(roomID, op.Shape) })
		h.broadcastLocked(roomID, NewEnvelope(CreateType, roomID, userID, CreatePayload{Message: op.Shape}), "")
	case OpUpdate:
		room.Shapes.Replace(op.Prev.Clone())
		h.persist(func(s ShapeStore) error { return s.UpsertShape(roomID, op.Prev) })
		h.broadcastLocked(roomID, NewEnvelope(UpdateType, roomID, userID, UpdatePayload{ID: op.ShapeID, NewMessage: op.Prev}), "")
	}
}

// redoLocked re-applies the forward direction of the caller's most
// recently undone operation.
func (h *Hub) redoLocked(roomID, userID string) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	op, ok := room.History.Redo(userID)
	if !ok {
		return
	}

	switch op.Kind {
	case OpCreate:
		room.Shapes = room.Shapes.Append(op.Shape.Clone())
		h.persist(func(s ShapeStore) error { return s.UpsertShape(roomID, op.Shape) })
		h.broadcastLocked(roomID, NewEnvelope(CreateType, roomID, userID, CreatePayload{Message: op.Shape}), "")
	case OpDelete:
		room.Shapes.Remove(op.ShapeID)
		h.persist(func(s ShapeStore) error { return s.DeleteShape(roomID, op.ShapeID) })
		h.broadcastLocked(roomID, NewEnvelope(DeleteType, roomID, userID, DeletePayload{ID: op.ShapeID}), "")
	case OpUpdate:
		room.Shapes.Replace(op.Next.Clone())
		h.persist(func(s ShapeStore) error { return s.UpsertShape(roomID, op.Next) })
		h.broadcastLocked(roomID, NewEnvelope(UpdateType, roomID, userID, UpdatePayload{ID: op.ShapeID, NewMessage: op.Next}), "")
	}
}

func (h *Hub) resetLocked(roomID, userID string) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	room.Shapes = nil
	room.History.Reset()
	h.persist(func(s ShapeStore) error { return s.ReplaceShapes(roomID, nil) })
	h.broadcastLocked(roomID, NewEnvelope(ResetCanvasType, roomID, userID, nil), "")
}

// broadcastLocked fans a frame out to a room. excludeConn skips one
// connection (the sender of a preview); empty means everyone. Delivery is
// best-effort: a lagging member is skipped, never aborting the rest.
func (h *Hub) broadcastLocked(roomID string, env Envelope, excludeConn string) {
	raw, err := json.Marshal(env)
	if err != nil {
		logger.Sugar.Errorf("marshal broadcast frame: %v", err)
		return
	}
	for connID := range h.members[roomID] {
		if connID == excludeConn {
			continue
		}
		client, ok := h.conns[connID]
		if !ok {
			continue
		}
		select {
		case client.Send <- raw:
		default:
			logger.Sugar.Warnf("client %s send buffer full, dropping frame", client.UserID)
		}
	}
}

func (h *Hub) sendLocked(c *Client, env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		logger.Sugar.Errorf("marshal frame: %v", err)
		return
	}
	select {
	case c.Send <- raw:
	default:
		logger.Sugar.Warnf("client %s send buffer full, dropping frame", c.UserID)
	}
}

// sendError emits an error frame on the offending connection without
// disconnecting it.
func (h *Hub) sendError(c *Client, msg string) {
	env := NewEnvelope(ErrorType, "", "", ErrorPayload{Message: msg})
	raw, _ := json.Marshal(env)
	select {
	case c.Send <- raw:
	default:
	}
}

// persist runs a gateway call fire-and-forget. Peers may observe a
// mutation before it is durably stored; the broadcast path is never
// rolled back on storage failure.
func (h *Hub) persist(fn func(ShapeStore) error) {
	if h.store == nil {
		return
	}
	store := h.store
	go func() {
		if err := fn(store); err != nil {
			logger.Sugar.Errorf("persistence gateway: %v", err)
		}
	}()
}

// startCursorBroadcastLocked begins the per-room presence ticker, which
// relays each member's latest cursor to everyone else. It runs only while
// the room has two or more members.
func (h *Hub) startCursorBroadcastLocked(room *Room) {
	stop := make(chan struct{})
	room.cursorStop = stop
	roomID := room.ID
	go func() {
		ticker := time.NewTicker(h.cursorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				h.broadcastCursors(roomID)
			}
		}
	}()
}

func (h *Hub) broadcastCursors(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for userID, cur := range room.cursors {
		env := NewEnvelope(CursorType, roomID, userID, cur)
		raw, err := json.Marshal(env)
		if err != nil {
			continue
		}
		for connID := range h.members[roomID] {
			client, ok := h.conns[connID]
			if !ok || client.UserID == userID {
				continue
			}
			select {
			case client.Send <- raw:
			default:
			}
		}
	}
}

// CursorBroadcastActive reports whether a room's presence ticker is
// running.
func (h *Hub) CursorBroadcastActive(roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	return ok && room.cursorStop != nil
}

// MemberCount is the number of live connections in a room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members[roomID])
}

// RoomShapes returns a snapshot of a room's shape list.
func (h *Hub) RoomShapes(roomID string) shape.List {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[roomID]; ok {
		return room.Shapes.Clone()
	}
	return nil
}

// RoomHistoryLen is the number of logged operations for a room, zero when
// the room does not exist.
func (h *Hub) RoomHistoryLen(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[roomID]; ok {
		return room.History.Len()
	}
	return 0
}

// RemoveRoom forcefully evicts a room: clients are disconnected and the
// in-memory state dropped. Called when a board is deleted via the API.
func (h *Hub) RemoveRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[roomID]
	if room != nil && room.cursorStop != nil {
		close(room.cursorStop)
		room.cursorStop = nil
	}
	for connID := range h.members[roomID] {
		if client, ok := h.conns[connID]; ok {
			client.RoomID = ""
			client.Conn.Close() // readPump exits and unregisters safely
		}
	}
	delete(h.rooms, roomID)
	delete(h.members, roomID)
}
