package geometry

import "sketchsync/internal/shape"

// Handle names one of the eight resize grab-points on a selection box.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists all eight, in the order hot-zones are scanned.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// components splits a handle into its vertical (n/s) and horizontal (e/w)
// parts; either may be empty for edge handles.
func components(h Handle) (vert, horiz string) {
	for _, c := range h {
		switch c {
		case 'n', 's':
			vert = string(c)
		case 'e', 'w':
			horiz = string(c)
		}
	}
	return
}

// ApplyResize moves one handle of rect by (dx, dy) and returns the
// resulting rect along with the handle the pointer is now holding. When a
// drag crosses the opposite edge, the rect is flipped back to positive
// extents and the handle label swaps its flipped component so it stays
// attached to the physical corner under the pointer. The final size is
// clamped to [MinSize, MaxDimension].
func ApplyResize(r shape.Rect, h Handle, dx, dy float64) (shape.Rect, Handle) {
	vert, horiz := components(h)

	switch horiz {
	case "e":
		r.W += dx
	case "w":
		r.X += dx
		r.W -= dx
	}
	switch vert {
	case "s":
		r.H += dy
	case "n":
		r.Y += dy
		r.H -= dy
	}

	hFlip, vFlip := false, false
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
		hFlip = true
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
		vFlip = true
	}

	if hFlip || vFlip {
		if hFlip {
			switch horiz {
			case "e":
				horiz = "w"
			case "w":
				horiz = "e"
			}
		}
		if vFlip {
			switch vert {
			case "n":
				vert = "s"
			case "s":
				vert = "n"
			}
		}
		h = Handle(vert + horiz)
	}

	r.W = clampSize(r.W)
	r.H = clampSize(r.H)
	return r, h
}

func clampSize(v float64) float64 {
	if v < MinSize {
		return MinSize
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

// ResizeLine moves one endpoint of a segment; handle w addresses (x1,y1),
// anything else (x2,y2).
func ResizeLine(l shape.LineData, h Handle, dx, dy float64) shape.LineData {
	if _, horiz := components(h); horiz == "w" {
		l.X1 += dx
		l.Y1 += dy
	} else {
		l.X2 += dx
		l.Y2 += dy
	}
	return l
}

// HandleRects returns the hot-zone box for each handle around a padded
// selection box. size is the edge length of one hot-zone.
func HandleRects(r shape.Rect, pad, size float64) map[Handle]shape.Rect {
	r = Normalize(r)
	x, y := r.X-pad, r.Y-pad
	w, h := r.W+2*pad, r.H+2*pad
	half := size / 2

	at := func(cx, cy float64) shape.Rect {
		return shape.Rect{X: cx - half, Y: cy - half, W: size, H: size}
	}
	return map[Handle]shape.Rect{
		HandleNW: at(x, y),
		HandleN:  at(x+w/2, y),
		HandleNE: at(x+w, y),
		HandleE:  at(x+w, y+h/2),
		HandleSE: at(x+w, y+h),
		HandleS:  at(x+w/2, y+h),
		HandleSW: at(x, y+h),
		HandleW:  at(x, y+h/2),
	}
}

// HandleAt returns the handle whose hot-zone contains p, if any.
func HandleAt(r shape.Rect, p shape.Point, pad, size float64) (Handle, bool) {
	zones := HandleRects(r, pad, size)
	for _, h := range Handles {
		z := zones[h]
		if p.X >= z.X && p.X <= z.X+z.W && p.Y >= z.Y && p.Y <= z.Y+z.H {
			return h, true
		}
	}
	return "", false
}
