// Package geometry implements the construction, normalization, hit-testing
// and resize math for every shape kind. It is pure: no transport, no
// rendering, no globals.
package geometry

import (
	"sketchsync/internal/shape"
)

const (
	// MinSize is the smallest width/height a shape may have after any
	// normalize or resize.
	MinSize = 4.0
	// MaxDimension caps a single extent so a runaway drag cannot blow up
	// the canvas.
	MaxDimension = 10000.0

	// DefaultTolerance is the hit-test slack in canvas units.
	DefaultTolerance = 8.0
)

// Normalize rewrites a rect drawn in any direction so the origin sits at
// the min corner and both extents are positive, then raises the extents to
// MinSize. Called before every durable write of an axis-aligned shape.
func Normalize(r shape.Rect) shape.Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	if r.W < MinSize {
		r.W = MinSize
	}
	if r.H < MinSize {
		r.H = MinSize
	}
	return r
}

// CreateShape builds a new shape of the given kind from a drag origin and
// extents. Axis-aligned kinds get a normalized bounding box; line-like
// kinds keep their endpoints as drawn and derive the box from them.
func CreateShape(kind shape.Kind, origin shape.Point, w, h float64, style shape.Style) shape.Shape {
	s := shape.Shape{
		ID:          shape.NewID(),
		Kind:        kind,
		Opacity:     style.Opacity,
		Stroke:      style.Stroke,
		Fill:        style.Fill,
		StrokeWidth: style.StrokeWidth,
	}
	if s.Opacity <= 0 {
		s.Opacity = 1
	}

	switch kind {
	case shape.Rectangle, shape.Rhombus:
		s.Edges = style.Edges
		if s.Edges == "" {
			s.Edges = shape.EdgesSharp
		}
		s.Box = Normalize(shape.Rect{X: origin.X, Y: origin.Y, W: w, H: h})
	case shape.Ellipse:
		s.Box = Normalize(shape.Rect{X: origin.X, Y: origin.Y, W: w, H: h})
	case shape.Line:
		s.Line = &shape.LineData{X1: origin.X, Y1: origin.Y, X2: origin.X + w, Y2: origin.Y + h}
		s.Box = LineBounds(*s.Line)
	case shape.Arrow:
		s.Line = &shape.LineData{X1: origin.X, Y1: origin.Y, X2: origin.X + w, Y2: origin.Y + h}
		s.ArrowHead = &shape.ArrowHead{Front: shape.HeadArrow, Back: shape.HeadNone}
		s.Box = LineBounds(*s.Line)
	case shape.Pencil:
		s.Points = []shape.Point{origin}
		s.Box = shape.Rect{X: origin.X, Y: origin.Y, W: MinSize, H: MinSize}
	default:
		s.Box = Normalize(shape.Rect{X: origin.X, Y: origin.Y, W: w, H: h})
	}
	return s
}

// NewText builds a text shape anchored at pos. The caller supplies the
// measured box since text metrics are an injected capability.
func NewText(pos shape.Point, box shape.Rect, data shape.TextData, style shape.Style) shape.Shape {
	data.Pos = pos
	s := shape.Shape{
		ID:      shape.NewID(),
		Kind:    shape.Text,
		Opacity: style.Opacity,
		Box:     Normalize(box),
		Text:    &data,
	}
	if s.Opacity <= 0 {
		s.Opacity = 1
	}
	return s
}

// NewImage builds an image shape at pos with the given natural size.
func NewImage(pos shape.Point, src string, w, h float64, style shape.Style) shape.Shape {
	s := shape.Shape{
		ID:      shape.NewID(),
		Kind:    shape.Image,
		Opacity: style.Opacity,
		Box:     Normalize(shape.Rect{X: pos.X, Y: pos.Y, W: w, H: h}),
		Image:   &shape.ImageData{Src: src, Pos: pos, W: w, H: h},
	}
	if s.Opacity <= 0 {
		s.Opacity = 1
	}
	return s
}

// LineBounds derives an axis-aligned box from a segment, padded up to
// MinSize so degenerate horizontal/vertical lines stay selectable.
func LineBounds(l shape.LineData) shape.Rect {
	r := shape.Rect{X: l.X1, Y: l.Y1, W: l.X2 - l.X1, H: l.Y2 - l.Y1}
	return Normalize(r)
}

// PencilBounds derives the box around a freehand polyline.
func PencilBounds(pts []shape.Point) shape.Rect {
	if len(pts) == 0 {
		return shape.Rect{W: MinSize, H: MinSize}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Normalize(shape.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY})
}
