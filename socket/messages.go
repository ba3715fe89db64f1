package socket

import (
	"encoding/json"
	"fmt"

	"sketchsync/internal/shape"
)

// Message types exchanged over the websocket. Every frame is an Envelope
// whose payload decodes into exactly one of the typed payload structs
// below; unknown types are rejected at decode time.
const (
	JoinRoomType         = "join-room"
	LeaveRoomType        = "leave-room"
	LeaveRoomSuccessType = "leave-room-success"
	DrawType             = "draw-message"    // ephemeral in-progress shape
	TextPreviewType      = "text-preview"    // ephemeral text overlay echo
	CreateType           = "create-message"  // durable, logged, persisted
	DeleteType           = "delete-message"  // durable, logged, persisted
	UpdateType           = "update-message"  // durable unless flagged
	SyncType             = "sync"            // full shape-list replacement
	SyncAllType          = "sync-all"        // client-requested resync
	CursorType           = "cursor"          // presence only, never logged
	UndoType             = "undo"
	RedoType             = "redo"
	ResetCanvasType      = "reset-canvas"
	ErrorType            = "error"
)

// UpdatePreviewFlag marks an update-message as ephemeral: broadcast to
// peers but never logged or persisted.
const UpdatePreviewFlag = "update-preview"

// RoleCreator lets a joining client seed the room's shape list wholesale.
// The last creator join wins.
const RoleCreator = "creator"

// Envelope is the wire frame. UserID is overwritten server-side with the
// authenticated user before the hub ever sees it.
type Envelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the closed union of frame payloads.
type Payload interface{ isPayload() }

type JoinRoomPayload struct {
	UserRole string     `json:"userRole,omitempty"`
	Shapes   shape.List `json:"shapes,omitempty"`
}

type DrawPayload struct {
	Message   shape.Shape `json:"message"`
	PreviewID string      `json:"previewId,omitempty"`
}

type CreatePayload struct {
	Message   shape.Shape `json:"message"`
	PreviewID string      `json:"previewId,omitempty"`
}

type DeletePayload struct {
	ID string `json:"id"`
}

type UpdatePayload struct {
	ID         string      `json:"id"`
	NewMessage shape.Shape `json:"newMessage"`
	Flag       string      `json:"flag,omitempty"`
}

type SyncPayload struct {
	Messages shape.List `json:"messages"`
}

type CursorPayload struct {
	Username string      `json:"username"`
	Pos      shape.Point `json:"pos"`
	TS       int64       `json:"ts"`
}

type EmptyPayload struct{}

type ErrorPayload struct {
	Message string `json:"message"`
}

func (JoinRoomPayload) isPayload() {}
func (DrawPayload) isPayload()     {}
func (CreatePayload) isPayload()   {}
func (DeletePayload) isPayload()   {}
func (UpdatePayload) isPayload()   {}
func (SyncPayload) isPayload()     {}
func (CursorPayload) isPayload()   {}
func (EmptyPayload) isPayload()    {}
func (ErrorPayload) isPayload()    {}

// Ephemeral reports whether an update payload is a preview.
func (p UpdatePayload) Ephemeral() bool { return p.Flag != "" }

// Decode unmarshals the envelope's payload into its concrete type.
// Callers type-switch on the result; an unknown type is an error, so new
// message kinds are a compile-time-visible addition here.
func (e Envelope) Decode() (Payload, error) {
	switch e.Type {
	case JoinRoomType:
		return decodePayload[JoinRoomPayload](e)
	case DrawType, TextPreviewType:
		return decodePayload[DrawPayload](e)
	case CreateType:
		return decodePayload[CreatePayload](e)
	case DeleteType:
		return decodePayload[DeletePayload](e)
	case UpdateType:
		return decodePayload[UpdatePayload](e)
	case SyncType, SyncAllType:
		return decodePayload[SyncPayload](e)
	case CursorType:
		return decodePayload[CursorPayload](e)
	case LeaveRoomType, LeaveRoomSuccessType, UndoType, RedoType, ResetCanvasType:
		return EmptyPayload{}, nil
	case ErrorType:
		return decodePayload[ErrorPayload](e)
	default:
		return nil, fmt.Errorf("unknown message type %q", e.Type)
	}
}

func decodePayload[T Payload](e Envelope) (Payload, error) {
	var v T
	if len(e.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return v, nil
}

// NewEnvelope marshals a typed payload into a wire frame.
func NewEnvelope(msgType, roomID, userID string, payload Payload) Envelope {
	e := Envelope{Type: msgType, RoomID: roomID, UserID: userID}
	if payload != nil {
		if _, ok := payload.(EmptyPayload); !ok {
			raw, err := json.Marshal(payload)
			if err == nil {
				e.Payload = raw
			}
		}
	}
	return e
}
