package shape

import "github.com/google/uuid"

// Kind discriminates the shape variants carried on the wire and in a room's
// shape list.
type Kind string

const (
	Rectangle Kind = "rectangle"
	Rhombus   Kind = "rhombus"
	Ellipse   Kind = "ellipse"
	Line      Kind = "line"
	Arrow     Kind = "arrow"
	Pencil    Kind = "pencil"
	Text      Kind = "text"
	Image     Kind = "image"
)

// Edges selects sharp or rounded corners for rectangle/rhombus.
type Edges string

const (
	EdgesSharp Edges = "sharp"
	EdgesRound Edges = "round"
)

// HeadKind is the style of one arrow end.
type HeadKind string

const (
	HeadNone            HeadKind = "none"
	HeadArrow           HeadKind = "arrow"
	HeadTriangle        HeadKind = "triangle"
	HeadTriangleOutline HeadKind = "triangleOutline"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box. W and H may be negative while a
// shape is being dragged out; geometry.Normalize fixes that up before any
// durable write.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type LineData struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type ArrowHead struct {
	Front HeadKind `json:"front"`
	Back  HeadKind `json:"back"`
}

type TextData struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	Pos        Point   `json:"pos"`
}

type ImageData struct {
	Src string  `json:"src"`
	Pos Point   `json:"pos"`
	W   float64 `json:"w"`
	H   float64 `json:"h"`
}

// Style carries the stroke/fill properties shared by the drawable kinds.
type Style struct {
	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
	Edges       Edges   `json:"edges,omitempty"`
}

// Shape is one drawable object. Kind-specific payload fields are pointers
// (or slices) so absent payloads stay out of the JSON.
type Shape struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	Opacity float64 `json:"opacity"`
	Box     Rect    `json:"boundingBox"`

	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`

	Edges     Edges      `json:"edges,omitempty"`
	Line      *LineData  `json:"lineData,omitempty"`
	ArrowHead *ArrowHead `json:"arrowHead,omitempty"`
	ArrowType string     `json:"arrowType,omitempty"`
	Points    []Point    `json:"points,omitempty"`
	Text      *TextData  `json:"textData,omitempty"`
	Image     *ImageData `json:"imageData,omitempty"`
}

// NewID returns a fresh shape id.
func NewID() string {
	return uuid.NewString()
}

// Clone deep-copies a shape so history snapshots are immune to later
// in-place edits.
func (s Shape) Clone() Shape {
	c := s
	if s.Line != nil {
		l := *s.Line
		c.Line = &l
	}
	if s.ArrowHead != nil {
		h := *s.ArrowHead
		c.ArrowHead = &h
	}
	if s.Text != nil {
		t := *s.Text
		c.Text = &t
	}
	if s.Image != nil {
		i := *s.Image
		c.Image = &i
	}
	if s.Points != nil {
		c.Points = make([]Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}

// List is a room's ordered shape sequence; slice order is the z-order
// (later entries draw on top).
type List []Shape

// Find returns the index of the shape with the given id, or -1.
func (l List) Find(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Append adds a shape at the top of the z-order.
func (l List) Append(s Shape) List {
	return append(l, s)
}

// Remove deletes the shape with the given id, preserving z-order of the
// rest. Reports whether anything was removed.
func (l *List) Remove(id string) bool {
	i := l.Find(id)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// Replace swaps the shape with s.ID in place, keeping its z-position.
// Reports whether the id was present.
func (l List) Replace(s Shape) bool {
	i := l.Find(s.ID)
	if i < 0 {
		return false
	}
	l[i] = s
	return true
}

// Clone deep-copies the whole list.
func (l List) Clone() List {
	out := make(List, len(l))
	for i := range l {
		out[i] = l[i].Clone()
	}
	return out
}
