package geometry

import "sketchsync/internal/shape"

// Translate moves a whole shape by (dx, dy), keeping every kind-specific
// payload in step with the bounding box.
func Translate(s shape.Shape, dx, dy float64) shape.Shape {
	s = s.Clone()
	s.Box.X += dx
	s.Box.Y += dy
	if s.Line != nil {
		s.Line.X1 += dx
		s.Line.Y1 += dy
		s.Line.X2 += dx
		s.Line.Y2 += dy
	}
	for i := range s.Points {
		s.Points[i].X += dx
		s.Points[i].Y += dy
	}
	if s.Text != nil {
		s.Text.Pos.X += dx
		s.Text.Pos.Y += dy
	}
	if s.Image != nil {
		s.Image.Pos.X += dx
		s.Image.Pos.Y += dy
	}
	return s
}

// ResizeShape applies a handle drag to a shape. Box-backed kinds go
// through ApplyResize; line kinds move the endpoint the handle addresses;
// pencil strokes rescale their points into the new box. Returns the new
// shape plus the handle the pointer is now holding (it swaps on flip).
func ResizeShape(s shape.Shape, h Handle, dx, dy float64) (shape.Shape, Handle) {
	s = s.Clone()
	switch s.Kind {
	case shape.Line, shape.Arrow:
		if s.Line != nil {
			l := ResizeLine(*s.Line, h, dx, dy)
			s.Line = &l
			s.Box = LineBounds(l)
		}
		return s, h
	case shape.Pencil:
		oldBox := Normalize(s.Box)
		newBox, nh := ApplyResize(s.Box, h, dx, dy)
		sx, sy := 1.0, 1.0
		if oldBox.W > 0 {
			sx = newBox.W / oldBox.W
		}
		if oldBox.H > 0 {
			sy = newBox.H / oldBox.H
		}
		for i := range s.Points {
			s.Points[i].X = newBox.X + (s.Points[i].X-oldBox.X)*sx
			s.Points[i].Y = newBox.Y + (s.Points[i].Y-oldBox.Y)*sy
		}
		s.Box = newBox
		return s, nh
	default:
		newBox, nh := ApplyResize(s.Box, h, dx, dy)
		s.Box = newBox
		if s.Text != nil {
			s.Text.Pos = shape.Point{X: newBox.X, Y: newBox.Y}
		}
		if s.Image != nil {
			s.Image.Pos = shape.Point{X: newBox.X, Y: newBox.Y}
			s.Image.W = newBox.W
			s.Image.H = newBox.H
		}
		return s, nh
	}
}
