package geometry

import (
	"math"

	"sketchsync/internal/shape"
)

// SegmentOp is one path-building command.
type SegmentOp uint8

const (
	MoveTo SegmentOp = iota
	LineTo
	QuadTo
	CubeTo
	Close
)

// Segment is one command of a path descriptor. P is the endpoint; QuadTo
// uses C1 as its control point, CubeTo uses C1 and C2.
type Segment struct {
	Op     SegmentOp
	P      shape.Point
	C1, C2 shape.Point
}

// PathDescriptor is the renderer-agnostic outline of a shape. Any 2D
// backend can walk it; the sync core never interprets it.
type PathDescriptor []Segment

const (
	// bezierCircle is the standard control-point factor approximating a
	// quarter circle with one cubic Bezier.
	bezierCircle = 0.5522847498307936

	// Arrow head defaults.
	headLength = 16.0
	headAngle  = math.Pi / 6

	// Round-rhombus fillet tuning. The ratio is the fraction of each
	// adjacent edge given to the fillet, hard-capped below half an edge;
	// steepness pulls the corner control point toward the true vertex.
	rhombusFilletRatio = 0.2
	rhombusMaxRatio    = 0.49
	rhombusSteepness   = 0.6
)

// RectanglePath builds the outline of a rectangle, rounded when edges is
// EdgesRound. The rect is normalized first, so negative extents are safe.
func RectanglePath(r shape.Rect, edges shape.Edges) PathDescriptor {
	r = Normalize(r)
	x, y, w, h := r.X, r.Y, r.W, r.H

	if edges != shape.EdgesRound {
		return PathDescriptor{
			{Op: MoveTo, P: shape.Point{X: x, Y: y}},
			{Op: LineTo, P: shape.Point{X: x + w, Y: y}},
			{Op: LineTo, P: shape.Point{X: x + w, Y: y + h}},
			{Op: LineTo, P: shape.Point{X: x, Y: y + h}},
			{Op: Close},
		}
	}

	rad := math.Min(math.Min(w, h)/5, math.Min(w/2, h/2))
	return PathDescriptor{
		{Op: MoveTo, P: shape.Point{X: x + rad, Y: y}},
		{Op: LineTo, P: shape.Point{X: x + w - rad, Y: y}},
		{Op: QuadTo, C1: shape.Point{X: x + w, Y: y}, P: shape.Point{X: x + w, Y: y + rad}},
		{Op: LineTo, P: shape.Point{X: x + w, Y: y + h - rad}},
		{Op: QuadTo, C1: shape.Point{X: x + w, Y: y + h}, P: shape.Point{X: x + w - rad, Y: y + h}},
		{Op: LineTo, P: shape.Point{X: x + rad, Y: y + h}},
		{Op: QuadTo, C1: shape.Point{X: x, Y: y + h}, P: shape.Point{X: x, Y: y + h - rad}},
		{Op: LineTo, P: shape.Point{X: x, Y: y + rad}},
		{Op: QuadTo, C1: shape.Point{X: x, Y: y}, P: shape.Point{X: x + rad, Y: y}},
		{Op: Close},
	}
}

// RhombusVertices returns the diamond through the four edge midpoints of
// the bounding box, in order top, right, bottom, left.
func RhombusVertices(r shape.Rect) [4]shape.Point {
	r = Normalize(r)
	return [4]shape.Point{
		{X: r.X + r.W/2, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H/2},
		{X: r.X + r.W/2, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H/2},
	}
}

// RhombusPath builds a diamond outline, with quadratic corner fillets when
// edges is EdgesRound.
func RhombusPath(r shape.Rect, edges shape.Edges) PathDescriptor {
	v := RhombusVertices(r)

	if edges != shape.EdgesRound {
		return PathDescriptor{
			{Op: MoveTo, P: v[0]},
			{Op: LineTo, P: v[1]},
			{Op: LineTo, P: v[2]},
			{Op: LineTo, P: v[3]},
			{Op: Close},
		}
	}

	ratio := math.Min(rhombusFilletRatio, rhombusMaxRatio)
	// Tangent points per vertex: entry on the incoming edge, exit on the
	// outgoing edge, each at ratio of that edge's length from the vertex.
	type fillet struct{ entry, exit, ctrl shape.Point }
	fillets := make([]fillet, 4)
	for i := range v {
		prev := v[(i+3)%4]
		next := v[(i+1)%4]
		entry := lerp(v[i], prev, ratio)
		exit := lerp(v[i], next, ratio)
		mid := shape.Point{X: (entry.X + exit.X) / 2, Y: (entry.Y + exit.Y) / 2}
		ctrl := lerp(mid, v[i], rhombusSteepness)
		fillets[i] = fillet{entry: entry, exit: exit, ctrl: ctrl}
	}

	p := PathDescriptor{{Op: MoveTo, P: fillets[0].exit}}
	for i := 1; i <= 4; i++ {
		f := fillets[i%4]
		p = append(p,
			Segment{Op: LineTo, P: f.entry},
			Segment{Op: QuadTo, C1: f.ctrl, P: f.exit},
		)
	}
	return append(p, Segment{Op: Close})
}

// EllipsePath approximates an ellipse inscribed in the rect with four
// cubic Bezier quadrants.
func EllipsePath(r shape.Rect) PathDescriptor {
	r = Normalize(r)
	rx, ry := r.W/2, r.H/2
	cx, cy := r.X+rx, r.Y+ry
	ox, oy := rx*bezierCircle, ry*bezierCircle

	return PathDescriptor{
		{Op: MoveTo, P: shape.Point{X: cx + rx, Y: cy}},
		{Op: CubeTo,
			C1: shape.Point{X: cx + rx, Y: cy + oy},
			C2: shape.Point{X: cx + ox, Y: cy + ry},
			P:  shape.Point{X: cx, Y: cy + ry}},
		{Op: CubeTo,
			C1: shape.Point{X: cx - ox, Y: cy + ry},
			C2: shape.Point{X: cx - rx, Y: cy + oy},
			P:  shape.Point{X: cx - rx, Y: cy}},
		{Op: CubeTo,
			C1: shape.Point{X: cx - rx, Y: cy - oy},
			C2: shape.Point{X: cx - ox, Y: cy - ry},
			P:  shape.Point{X: cx, Y: cy - ry}},
		{Op: CubeTo,
			C1: shape.Point{X: cx + ox, Y: cy - ry},
			C2: shape.Point{X: cx + rx, Y: cy - oy},
			P:  shape.Point{X: cx + rx, Y: cy}},
		{Op: Close},
	}
}

// LinePath is a bare segment.
func LinePath(l shape.LineData) PathDescriptor {
	return PathDescriptor{
		{Op: MoveTo, P: shape.Point{X: l.X1, Y: l.Y1}},
		{Op: LineTo, P: shape.Point{X: l.X2, Y: l.Y2}},
	}
}

// ArrowPath is a segment plus optional heads on either end. The back head
// points the opposite way along the same axis.
func ArrowPath(l shape.LineData, heads shape.ArrowHead) PathDescriptor {
	p := LinePath(l)
	angle := math.Atan2(l.Y2-l.Y1, l.X2-l.X1)
	p = append(p, headPath(shape.Point{X: l.X2, Y: l.Y2}, angle, heads.Front)...)
	p = append(p, headPath(shape.Point{X: l.X1, Y: l.Y1}, angle+math.Pi, heads.Back)...)
	return p
}

// headPath builds one arrow head at tip, for a line arriving along angle.
func headPath(tip shape.Point, angle float64, kind shape.HeadKind) PathDescriptor {
	if kind == shape.HeadNone || kind == "" {
		return nil
	}
	left := shape.Point{
		X: tip.X - headLength*math.Cos(angle-headAngle),
		Y: tip.Y - headLength*math.Sin(angle-headAngle),
	}
	right := shape.Point{
		X: tip.X - headLength*math.Cos(angle+headAngle),
		Y: tip.Y - headLength*math.Sin(angle+headAngle),
	}

	if kind == shape.HeadArrow {
		// Open chevron: two strokes meeting at the tip.
		return PathDescriptor{
			{Op: MoveTo, P: left},
			{Op: LineTo, P: tip},
			{Op: LineTo, P: right},
		}
	}
	// Triangle and triangleOutline share geometry; fill is the renderer's
	// call based on the head kind it was handed.
	return PathDescriptor{
		{Op: MoveTo, P: tip},
		{Op: LineTo, P: left},
		{Op: LineTo, P: right},
		{Op: Close},
	}
}

// PencilPath joins the freehand points with straight segments.
func PencilPath(pts []shape.Point) PathDescriptor {
	if len(pts) == 0 {
		return nil
	}
	p := PathDescriptor{{Op: MoveTo, P: pts[0]}}
	for _, pt := range pts[1:] {
		p = append(p, Segment{Op: LineTo, P: pt})
	}
	return p
}

// BuildPath dispatches to the per-kind builder. Kinds without an outline
// (text, image) return nil; the renderer draws those from their payloads.
func BuildPath(s shape.Shape) PathDescriptor {
	switch s.Kind {
	case shape.Rectangle:
		return RectanglePath(s.Box, s.Edges)
	case shape.Rhombus:
		return RhombusPath(s.Box, s.Edges)
	case shape.Ellipse:
		return EllipsePath(s.Box)
	case shape.Line:
		if s.Line != nil {
			return LinePath(*s.Line)
		}
	case shape.Arrow:
		if s.Line != nil {
			heads := shape.ArrowHead{Front: shape.HeadArrow}
			if s.ArrowHead != nil {
				heads = *s.ArrowHead
			}
			return ArrowPath(*s.Line, heads)
		}
	case shape.Pencil:
		return PencilPath(s.Points)
	}
	return nil
}

func lerp(from, to shape.Point, t float64) shape.Point {
	return shape.Point{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}
