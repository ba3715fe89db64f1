package geometry

import (
	"math"

	"sketchsync/internal/shape"
)

// SegmentDistSq returns the squared distance from p to the closest point
// on segment ab (the projection is clamped to the segment).
func SegmentDistSq(p, a, b shape.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		ex, ey := p.X-a.X, p.Y-a.Y
		return ex*ex + ey*ey
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	ex, ey := p.X-cx, p.Y-cy
	return ex*ex + ey*ey
}

// HitSegment reports whether p lies within tolerance of segment ab.
func HitSegment(p, a, b shape.Point, tolerance float64) bool {
	return SegmentDistSq(p, a, b) <= tolerance*tolerance
}

// HitPolyline tests p against each consecutive pair of points.
func HitPolyline(p shape.Point, pts []shape.Point, tolerance float64) bool {
	if len(pts) == 1 {
		return HitSegment(p, pts[0], pts[0], tolerance)
	}
	for i := 1; i < len(pts); i++ {
		if HitSegment(p, pts[i-1], pts[i], tolerance) {
			return true
		}
	}
	return false
}

// HitRectOutline tests p against the four edges of the box.
func HitRectOutline(p shape.Point, r shape.Rect, tolerance float64) bool {
	r = Normalize(r)
	tl := shape.Point{X: r.X, Y: r.Y}
	tr := shape.Point{X: r.X + r.W, Y: r.Y}
	br := shape.Point{X: r.X + r.W, Y: r.Y + r.H}
	bl := shape.Point{X: r.X, Y: r.Y + r.H}
	return HitSegment(p, tl, tr, tolerance) ||
		HitSegment(p, tr, br, tolerance) ||
		HitSegment(p, br, bl, tolerance) ||
		HitSegment(p, bl, tl, tolerance)
}

// HitRhombusOutline tests p against the four diamond edges.
func HitRhombusOutline(p shape.Point, r shape.Rect, tolerance float64) bool {
	v := RhombusVertices(r)
	return HitSegment(p, v[0], v[1], tolerance) ||
		HitSegment(p, v[1], v[2], tolerance) ||
		HitSegment(p, v[2], v[3], tolerance) ||
		HitSegment(p, v[3], v[0], tolerance)
}

// HitEllipse evaluates the normalized ellipse equation at p and accepts
// when the point sits within tolerance of the analytic boundary, scaled by
// the smaller radius so eccentric ellipses do not over-accept.
func HitEllipse(p shape.Point, r shape.Rect, tolerance float64) bool {
	r = Normalize(r)
	rx, ry := r.W/2, r.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	cx, cy := r.X+rx, r.Y+ry
	nx := (p.X - cx) / rx
	ny := (p.Y - cy) / ry
	value := nx*nx + ny*ny
	return math.Abs(math.Sqrt(value)-1)*math.Min(rx, ry) <= tolerance
}

// HitBox is plain containment, used for text and image shapes.
func HitBox(p shape.Point, r shape.Rect) bool {
	r = Normalize(r)
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// HitShape dispatches the per-kind hit test.
func HitShape(s shape.Shape, p shape.Point, tolerance float64) bool {
	switch s.Kind {
	case shape.Rectangle:
		return HitRectOutline(p, s.Box, tolerance)
	case shape.Rhombus:
		return HitRhombusOutline(p, s.Box, tolerance)
	case shape.Ellipse:
		return HitEllipse(p, s.Box, tolerance)
	case shape.Line, shape.Arrow:
		if s.Line == nil {
			return false
		}
		a := shape.Point{X: s.Line.X1, Y: s.Line.Y1}
		b := shape.Point{X: s.Line.X2, Y: s.Line.Y2}
		return HitSegment(p, a, b, tolerance)
	case shape.Pencil:
		return HitPolyline(p, s.Points, tolerance)
	case shape.Text, shape.Image:
		return HitBox(p, s.Box)
	}
	return false
}
