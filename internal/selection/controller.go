// Package selection interprets pointer events against the shape list and
// turns them into drag/resize mutations. It is client-local: the room only
// ever sees the updates emitted through the Emitter.
package selection

import (
	"sketchsync/internal/geometry"
	"sketchsync/internal/shape"
)

// State is the controller's pointer-interaction phase.
type State int

const (
	Idle State = iota
	Hovering
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Cursor is the pointer cursor the UI should show.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorMove    Cursor = "move"
)

// resizeCursors maps each handle to its directional cursor.
var resizeCursors = map[geometry.Handle]Cursor{
	geometry.HandleN:  "ns-resize",
	geometry.HandleS:  "ns-resize",
	geometry.HandleE:  "ew-resize",
	geometry.HandleW:  "ew-resize",
	geometry.HandleNE: "nesw-resize",
	geometry.HandleSW: "nesw-resize",
	geometry.HandleNW: "nwse-resize",
	geometry.HandleSE: "nwse-resize",
}

// Emitter carries the controller's mutations outward: previews while a
// gesture is in flight, one durable update when it lands.
type Emitter interface {
	EmitPreview(s shape.Shape)
	EmitDurable(s shape.Shape)
}

// Store is the client's local shape list. Apply replaces a shape in place
// so the local render tracks the gesture.
type Store interface {
	Shapes() shape.List
	Apply(s shape.Shape)
}

const (
	handlePad  = 6.0
	handleSize = 12.0
)

// Controller is the Idle/Hovering/Dragging/Resizing state machine for the
// selection ("mouse") tool.
type Controller struct {
	store   Store
	emitter Emitter

	state      State
	cursor     Cursor
	tolerance  float64
	hoveredID  string
	selectedID string

	handle  geometry.Handle
	last    shape.Point
	working shape.Shape
	moved   bool
}

// NewController builds a controller over the given store and emitter.
func NewController(store Store, emitter Emitter) *Controller {
	return &Controller{
		store:     store,
		emitter:   emitter,
		state:     Idle,
		cursor:    CursorDefault,
		tolerance: geometry.DefaultTolerance,
	}
}

func (c *Controller) State() State       { return c.state }
func (c *Controller) Cursor() Cursor     { return c.cursor }
func (c *Controller) SelectedID() string { return c.selectedID }

// topmostHit scans the shape list in reverse z-order and returns the first
// shape under p.
func (c *Controller) topmostHit(p shape.Point) (shape.Shape, bool) {
	shapes := c.store.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if geometry.HitShape(shapes[i], p, c.tolerance) {
			return shapes[i], true
		}
	}
	return shape.Shape{}, false
}

func (c *Controller) selected() (shape.Shape, bool) {
	if c.selectedID == "" {
		return shape.Shape{}, false
	}
	shapes := c.store.Shapes()
	if i := shapes.Find(c.selectedID); i >= 0 {
		return shapes[i], true
	}
	return shape.Shape{}, false
}

// PointerMove drives hover feedback while idle and the active gesture
// while dragging or resizing.
func (c *Controller) PointerMove(p shape.Point) {
	switch c.state {
	case Dragging:
		c.working = geometry.Translate(c.working, p.X-c.last.X, p.Y-c.last.Y)
		c.last = p
		c.moved = true
		c.store.Apply(c.working)
		c.emitter.EmitPreview(c.working)
	case Resizing:
		next, h := geometry.ResizeShape(c.working, c.handle, p.X-c.last.X, p.Y-c.last.Y)
		c.working = next
		c.handle = h
		c.last = p
		c.moved = true
		c.store.Apply(c.working)
		c.emitter.EmitPreview(c.working)
	default:
		c.hover(p)
	}
}

func (c *Controller) hover(p shape.Point) {
	if sel, ok := c.selected(); ok {
		if h, over := geometry.HandleAt(sel.Box, p, handlePad, handleSize); over {
			c.state = Hovering
			c.hoveredID = sel.ID
			c.cursor = resizeCursors[h]
			return
		}
	}
	if hit, ok := c.topmostHit(p); ok {
		c.state = Hovering
		c.hoveredID = hit.ID
		c.cursor = CursorMove
		return
	}
	c.state = Idle
	c.hoveredID = ""
	c.cursor = CursorDefault
}

// PointerDown resolves what the press means: grab a resize handle, start
// dragging the current selection, switch to a different shape with no
// intermediate deselect, or deselect entirely.
func (c *Controller) PointerDown(p shape.Point) {
	if sel, ok := c.selected(); ok {
		if h, over := geometry.HandleAt(sel.Box, p, handlePad, handleSize); over {
			c.state = Resizing
			c.handle = h
			c.working = sel.Clone()
			c.last = p
			c.moved = false
			c.cursor = resizeCursors[h]
			return
		}
	}

	hit, ok := c.topmostHit(p)
	if !ok {
		c.selectedID = ""
		c.state = Idle
		c.cursor = CursorDefault
		return
	}

	// Same shape keeps its selection; a different one takes it over
	// immediately.
	c.selectedID = hit.ID
	c.state = Dragging
	c.working = hit.Clone()
	c.last = p
	c.moved = false
	c.cursor = CursorMove
}

// PointerUp ends any gesture; if the pointer actually moved, the result is
// committed with a single durable update.
func (c *Controller) PointerUp(p shape.Point) {
	gesture := c.state
	c.state = Idle
	if gesture != Dragging && gesture != Resizing {
		return
	}
	if !c.moved {
		c.hover(p)
		return
	}
	final := c.working.Clone()
	final.Box = geometry.Normalize(final.Box)
	c.store.Apply(final)
	c.emitter.EmitDurable(final)
	c.hover(p)
}
