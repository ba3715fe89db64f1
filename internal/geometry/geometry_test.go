package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchsync/internal/shape"
)

func TestNormalizeShiftsOriginForNegativeExtents(t *testing.T) {
	// Dragging up-left from (10,10): width -40 means the origin moves
	// left by 40 and the width becomes positive.
	got := Normalize(shape.Rect{X: 10, Y: 10, W: -40, H: 30})
	assert.Equal(t, shape.Rect{X: -30, Y: 10, W: 40, H: 30}, got)
}

func TestNormalizeBothAxes(t *testing.T) {
	got := Normalize(shape.Rect{X: 100, Y: 100, W: -20, H: -50})
	assert.Equal(t, shape.Rect{X: 80, Y: 50, W: 20, H: 50}, got)
}

func TestNormalizeEnforcesMinSize(t *testing.T) {
	got := Normalize(shape.Rect{X: 5, Y: 5, W: 1, H: -1})
	assert.GreaterOrEqual(t, got.W, float64(MinSize))
	assert.GreaterOrEqual(t, got.H, float64(MinSize))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	r := Normalize(shape.Rect{X: 3, Y: 4, W: -30, H: -40})
	assert.Equal(t, r, Normalize(r))
}

func TestApplyResizeEast(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 40, H: 30}
	got, h := ApplyResize(r, HandleE, 10, 0)
	assert.Equal(t, shape.Rect{X: 0, Y: 0, W: 50, H: 30}, got)
	assert.Equal(t, HandleE, h)
}

func TestApplyResizeNorthWest(t *testing.T) {
	r := shape.Rect{X: 10, Y: 10, W: 40, H: 30}
	got, h := ApplyResize(r, HandleNW, 5, 5)
	assert.Equal(t, shape.Rect{X: 15, Y: 15, W: 35, H: 25}, got)
	assert.Equal(t, HandleNW, h)
}

func TestApplyResizeFlipsHorizontally(t *testing.T) {
	// Dragging the se handle 50 left on a 40-wide rect crosses the west
	// edge: the rect flips and the pointer is now holding sw.
	r := shape.Rect{X: 0, Y: 0, W: 40, H: 30}
	got, h := ApplyResize(r, HandleSE, -50, -5)
	assert.Equal(t, HandleSW, h)
	assert.Equal(t, 10.0, got.W)
	assert.Equal(t, 25.0, got.H)
	assert.Equal(t, -10.0, got.X)
}

func TestApplyResizeFlipIsInvolutive(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 40, H: 30}
	flipped, h := ApplyResize(r, HandleSE, -50, 0)
	require.Equal(t, HandleSW, h)
	_, h2 := ApplyResize(flipped, h, 50, 0)
	assert.Equal(t, HandleSE, h2)
}

func TestApplyResizeCornerFlipBothAxes(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 20, H: 20}
	_, h := ApplyResize(r, HandleNE, -40, 40)
	assert.Equal(t, HandleSW, h)
}

func TestApplyResizeClampsToBounds(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 40, H: 30}
	got, _ := ApplyResize(r, HandleE, MaxDimension*2, 0)
	assert.Equal(t, float64(MaxDimension), got.W)

	got, _ = ApplyResize(r, HandleS, 0, -29)
	assert.Equal(t, float64(MinSize), got.H)
}

func TestHitSegmentEndpointsAlwaysHit(t *testing.T) {
	a := shape.Point{X: 3, Y: 7}
	b := shape.Point{X: 120, Y: -4}
	assert.True(t, HitSegment(a, a, b, 0))
	assert.True(t, HitSegment(b, a, b, 0))
}

func TestHitSegmentIsSymmetricInEndpoints(t *testing.T) {
	a := shape.Point{X: 0, Y: 0}
	b := shape.Point{X: 100, Y: 50}
	for _, p := range []shape.Point{{X: 50, Y: 25}, {X: 50, Y: 40}, {X: -10, Y: 0}, {X: 110, Y: 55}} {
		assert.Equal(t, HitSegment(p, a, b, 9), HitSegment(p, b, a, 9), "point %+v", p)
	}
}

func TestHitSegmentRespectsTolerance(t *testing.T) {
	a := shape.Point{X: 0, Y: 0}
	b := shape.Point{X: 100, Y: 0}
	assert.True(t, HitSegment(shape.Point{X: 50, Y: 5}, a, b, 5))
	assert.False(t, HitSegment(shape.Point{X: 50, Y: 5.1}, a, b, 5))
	// Beyond the clamped projection the distance is to the endpoint.
	assert.False(t, HitSegment(shape.Point{X: 110, Y: 0}, a, b, 5))
}

func TestHitEllipseOnAnalyticBoundary(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 200, H: 100}
	cx, cy, rx, ry := 100.0, 50.0, 100.0, 50.0
	for angle := 0.0; angle < 2*math.Pi; angle += math.Pi / 7 {
		p := shape.Point{X: cx + rx*math.Cos(angle), Y: cy + ry*math.Sin(angle)}
		assert.True(t, HitEllipse(p, r, 1e-9), "boundary point at angle %.2f", angle)
	}
}

func TestHitEllipseRejectsCenterAndFarPoints(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 200, H: 100}
	assert.False(t, HitEllipse(shape.Point{X: 100, Y: 50}, r, 8))
	assert.False(t, HitEllipse(shape.Point{X: 300, Y: 50}, r, 8))
}

func TestHitShapeDispatch(t *testing.T) {
	rect := shape.Shape{Kind: shape.Rectangle, Box: shape.Rect{X: 0, Y: 0, W: 100, H: 50}}
	assert.True(t, HitShape(rect, shape.Point{X: 50, Y: 0}, 5), "top edge")
	assert.False(t, HitShape(rect, shape.Point{X: 50, Y: 25}, 5), "interior misses an outline test")

	line := shape.Shape{Kind: shape.Line, Line: &shape.LineData{X1: 0, Y1: 0, X2: 100, Y2: 100}}
	assert.True(t, HitShape(line, shape.Point{X: 50, Y: 50}, 5))

	img := shape.Shape{Kind: shape.Image, Box: shape.Rect{X: 0, Y: 0, W: 100, H: 50}}
	assert.True(t, HitShape(img, shape.Point{X: 50, Y: 25}, 5), "images use containment")
}

func TestHitPolyline(t *testing.T) {
	pts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}
	assert.True(t, HitPolyline(shape.Point{X: 15, Y: 5}, pts, 2))
	assert.False(t, HitPolyline(shape.Point{X: 10, Y: -5}, pts, 2))
}

func TestRoundedRectangleRadiusRule(t *testing.T) {
	p := RectanglePath(shape.Rect{X: 0, Y: 0, W: 100, H: 50}, shape.EdgesRound)
	require.NotEmpty(t, p)
	// r = min(min(w,h)/5, w/2, h/2) = 10, so the path starts at x+r.
	assert.Equal(t, MoveTo, p[0].Op)
	assert.Equal(t, 10.0, p[0].P.X)
	// Tiny boxes never get a radius beyond half an edge.
	p = RectanglePath(shape.Rect{X: 0, Y: 0, W: 6, H: 100}, shape.EdgesRound)
	assert.LessOrEqual(t, p[0].P.X, 3.0)
}

func TestEllipsePathQuadrants(t *testing.T) {
	p := EllipsePath(shape.Rect{X: 0, Y: 0, W: 100, H: 100})
	require.Len(t, p, 6) // move + 4 cubics + close
	assert.Equal(t, MoveTo, p[0].Op)
	for i := 1; i <= 4; i++ {
		assert.Equal(t, CubeTo, p[i].Op)
	}
	// Control offset follows the quarter-circle constant.
	assert.InDelta(t, 50+50*bezierCircle, p[1].C1.Y, 1e-9)
}

func TestArrowPathHeads(t *testing.T) {
	l := shape.LineData{X1: 0, Y1: 0, X2: 100, Y2: 0}
	p := ArrowPath(l, shape.ArrowHead{Front: shape.HeadArrow, Back: shape.HeadNone})
	// Shaft (2 segments) plus an open chevron (3 segments), no back head.
	require.Len(t, p, 5)
	// Chevron wings sit headLength back at ±headAngle.
	wing := p[2].P
	assert.InDelta(t, 100-headLength*math.Cos(headAngle), wing.X, 1e-9)
	assert.InDelta(t, headLength*math.Sin(headAngle), math.Abs(wing.Y), 1e-9)

	p = ArrowPath(l, shape.ArrowHead{Front: shape.HeadTriangle, Back: shape.HeadTriangle})
	// Shaft + two closed triangles.
	assert.Len(t, p, 2+4+4)
}

func TestRhombusRoundPathStaysInsideEdges(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 100, H: 60}
	p := RhombusPath(r, shape.EdgesRound)
	require.NotEmpty(t, p)
	v := RhombusVertices(r)
	// No path point may sit beyond a true vertex along the top edge.
	for _, seg := range p {
		assert.GreaterOrEqual(t, seg.P.Y, v[0].Y)
		assert.LessOrEqual(t, seg.P.Y, v[2].Y)
	}
}

func TestCreateShapeNormalizesBox(t *testing.T) {
	s := CreateShape(shape.Rectangle, shape.Point{X: 10, Y: 10}, -40, 30, shape.Style{})
	assert.Equal(t, shape.Rect{X: -30, Y: 10, W: 40, H: 30}, s.Box)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1.0, s.Opacity)
	assert.Equal(t, shape.EdgesSharp, s.Edges)
}

func TestCreateShapeLineKeepsEndpointsAsDrawn(t *testing.T) {
	s := CreateShape(shape.Arrow, shape.Point{X: 100, Y: 100}, -60, -20, shape.Style{})
	require.NotNil(t, s.Line)
	assert.Equal(t, shape.LineData{X1: 100, Y1: 100, X2: 40, Y2: 80}, *s.Line)
	assert.Equal(t, shape.Rect{X: 40, Y: 80, W: 60, H: 20}, s.Box)
}

func TestPencilBounds(t *testing.T) {
	pts := []shape.Point{{X: 5, Y: 40}, {X: -10, Y: 2}, {X: 30, Y: 18}}
	got := PencilBounds(pts)
	assert.Equal(t, shape.Rect{X: -10, Y: 2, W: 40, H: 38}, got)
}

func TestHandleAt(t *testing.T) {
	r := shape.Rect{X: 0, Y: 0, W: 100, H: 100}
	h, ok := HandleAt(r, shape.Point{X: 105, Y: 105}, 5, 10)
	require.True(t, ok)
	assert.Equal(t, HandleSE, h)

	h, ok = HandleAt(r, shape.Point{X: 50, Y: -5}, 5, 10)
	require.True(t, ok)
	assert.Equal(t, HandleN, h)

	_, ok = HandleAt(r, shape.Point{X: 50, Y: 50}, 5, 10)
	assert.False(t, ok)
}
