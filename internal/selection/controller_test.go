package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchsync/internal/geometry"
	"sketchsync/internal/shape"
)

type fakeStore struct {
	shapes shape.List
}

func (f *fakeStore) Shapes() shape.List { return f.shapes }
func (f *fakeStore) Apply(s shape.Shape) {
	if !f.shapes.Replace(s) {
		f.shapes = f.shapes.Append(s)
	}
}

type recordingEmitter struct {
	previews []shape.Shape
	durables []shape.Shape
}

func (r *recordingEmitter) EmitPreview(s shape.Shape) { r.previews = append(r.previews, s) }
func (r *recordingEmitter) EmitDurable(s shape.Shape) { r.durables = append(r.durables, s) }

func rect(id string, x, y, w, h float64) shape.Shape {
	return shape.Shape{ID: id, Kind: shape.Rectangle, Opacity: 1, Box: shape.Rect{X: x, Y: y, W: w, H: h}}
}

func newFixture(shapes ...shape.Shape) (*Controller, *fakeStore, *recordingEmitter) {
	store := &fakeStore{shapes: shapes}
	em := &recordingEmitter{}
	return NewController(store, em), store, em
}

func TestHoverPicksTopmostShape(t *testing.T) {
	// Two overlapping rectangles: the later one is on top.
	c, _, _ := newFixture(rect("below", 0, 0, 100, 100), rect("above", 50, 0, 100, 100))

	c.PointerMove(shape.Point{X: 100, Y: 0}) // top edge of both
	assert.Equal(t, Hovering, c.State())
	assert.Equal(t, "above", c.hoveredID)
	assert.Equal(t, CursorMove, c.Cursor())
}

func TestHoverNothingGoesIdle(t *testing.T) {
	c, _, _ := newFixture(rect("a", 0, 0, 50, 50))
	c.PointerMove(shape.Point{X: 500, Y: 500})
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, CursorDefault, c.Cursor())
}

func TestDragEmitsPreviewsThenOneDurable(t *testing.T) {
	c, store, em := newFixture(rect("a", 0, 0, 50, 50))

	c.PointerDown(shape.Point{X: 25, Y: 0})
	require.Equal(t, Dragging, c.State())
	assert.Equal(t, "a", c.SelectedID())

	c.PointerMove(shape.Point{X: 35, Y: 10})
	c.PointerMove(shape.Point{X: 45, Y: 20})
	require.Len(t, em.previews, 2)
	assert.Equal(t, 20.0, em.previews[1].Box.X)
	assert.Equal(t, 20.0, em.previews[1].Box.Y)

	c.PointerUp(shape.Point{X: 45, Y: 20})
	require.Len(t, em.durables, 1)
	assert.Equal(t, shape.Rect{X: 20, Y: 20, W: 50, H: 50}, em.durables[0].Box)
	assert.Equal(t, em.durables[0].Box, store.shapes[0].Box)
}

func TestPointerDownSwitchesSelectionImmediately(t *testing.T) {
	c, _, _ := newFixture(rect("a", 0, 0, 50, 50), rect("b", 200, 0, 50, 50))

	c.PointerDown(shape.Point{X: 25, Y: 0})
	require.Equal(t, "a", c.SelectedID())
	c.PointerUp(shape.Point{X: 25, Y: 0})

	// Clicking the other shape takes the selection over in one step.
	c.PointerDown(shape.Point{X: 225, Y: 0})
	assert.Equal(t, "b", c.SelectedID())
	assert.Equal(t, Dragging, c.State())
}

func TestPointerDownOnEmptyDeselects(t *testing.T) {
	c, _, _ := newFixture(rect("a", 0, 0, 50, 50))
	c.PointerDown(shape.Point{X: 25, Y: 0})
	c.PointerUp(shape.Point{X: 25, Y: 0})
	require.Equal(t, "a", c.SelectedID())

	c.PointerDown(shape.Point{X: 500, Y: 500})
	assert.Empty(t, c.SelectedID())
	assert.Equal(t, Idle, c.State())
}

func TestResizeFromHandle(t *testing.T) {
	c, store, em := newFixture(rect("a", 0, 0, 50, 50))

	// Select, then grab the se corner hot-zone.
	c.PointerDown(shape.Point{X: 25, Y: 0})
	c.PointerUp(shape.Point{X: 25, Y: 0})
	c.PointerDown(shape.Point{X: 56, Y: 56})
	require.Equal(t, Resizing, c.State())

	c.PointerMove(shape.Point{X: 76, Y: 66})
	require.Len(t, em.previews, 1)
	assert.Equal(t, 70.0, em.previews[0].Box.W)
	assert.Equal(t, 60.0, em.previews[0].Box.H)

	c.PointerUp(shape.Point{X: 76, Y: 66})
	assert.Equal(t, Idle.String(), "idle") // gesture finished
	assert.Equal(t, shape.Rect{X: 0, Y: 0, W: 70, H: 60}, store.shapes[0].Box)
	assert.Len(t, em.durables, 1)
}

func TestResizePastOppositeEdgeSwapsHandle(t *testing.T) {
	c, _, _ := newFixture(rect("a", 0, 0, 40, 30))
	c.PointerDown(shape.Point{X: 20, Y: 0})
	c.PointerUp(shape.Point{X: 20, Y: 0})
	c.PointerDown(shape.Point{X: 46, Y: 36})
	require.Equal(t, Resizing, c.State())
	require.Equal(t, geometry.HandleSE, c.handle)

	c.PointerMove(shape.Point{X: -4, Y: 31})
	assert.Equal(t, geometry.HandleSW, c.handle)
}

func TestHoverOverHandleShowsResizeCursor(t *testing.T) {
	c, _, _ := newFixture(rect("a", 0, 0, 50, 50))
	c.PointerDown(shape.Point{X: 25, Y: 0})
	c.PointerUp(shape.Point{X: 25, Y: 0})

	c.PointerMove(shape.Point{X: 56, Y: 56})
	assert.Equal(t, Cursor("nwse-resize"), c.Cursor())

	c.PointerMove(shape.Point{X: 25, Y: -6})
	assert.Equal(t, Cursor("ns-resize"), c.Cursor())
}

type fixedMetrics struct{}

func (fixedMetrics) Measure(text, _ string, size float64) (float64, float64) {
	return float64(len(text)) * size * 0.6, size * 1.2
}

func TestTextEditSessionLifecycle(t *testing.T) {
	sess := OpenTextEdit(shape.Point{X: 10, Y: 20}, shape.TextData{FontFamily: "sans", FontSize: 16}, fixedMetrics{})
	require.Equal(t, SessionOpen, sess.State())

	sess.SetText("hello")
	assert.Equal(t, SessionEditing, sess.State())
	assert.Greater(t, sess.Box().W, 16.0)

	s, ok := sess.Commit(shape.Style{})
	require.True(t, ok)
	assert.Equal(t, SessionCommitted, sess.State())
	assert.Equal(t, shape.Text, s.Kind)
	require.NotNil(t, s.Text)
	assert.Equal(t, "hello", s.Text.Text)
	assert.Equal(t, shape.Point{X: 10, Y: 20}, s.Text.Pos)

	// A closed session ignores further edits.
	sess.SetText("more")
	assert.Equal(t, "hello", s.Text.Text)
}

func TestTextEditEmptyCommitCancels(t *testing.T) {
	sess := OpenTextEdit(shape.Point{}, shape.TextData{FontSize: 16}, fixedMetrics{})
	sess.SetText("   ")
	_, ok := sess.Commit(shape.Style{})
	assert.False(t, ok)
	assert.Equal(t, SessionCancelled, sess.State())
}

func TestTextEditExistingKeepsID(t *testing.T) {
	existing := shape.Shape{ID: "t1", Kind: shape.Text, Text: &shape.TextData{Text: "old", FontSize: 14}}
	sess := EditExisting(existing, fixedMetrics{})
	sess.SetText("new")
	s, ok := sess.Commit(shape.Style{})
	require.True(t, ok)
	assert.Equal(t, "t1", s.ID)
	assert.Equal(t, "new", s.Text.Text)
}
