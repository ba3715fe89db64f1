package selection

import (
	"strings"

	"sketchsync/internal/geometry"
	"sketchsync/internal/shape"
)

// TextMetrics measures rendered text. It is injected so the session never
// touches a UI toolkit.
type TextMetrics interface {
	Measure(text, fontFamily string, fontSize float64) (w, h float64)
}

// SessionState is the text-editing session phase.
type SessionState int

const (
	SessionOpen SessionState = iota
	SessionEditing
	SessionCommitted
	SessionCancelled
)

// TextEditSession is one in-place text edit: opened at a canvas position,
// resized against the metrics while the user types, and finally committed
// into a text shape or cancelled.
type TextEditSession struct {
	state   SessionState
	metrics TextMetrics
	data    shape.TextData
	box     shape.Rect

	// editID is set when the session edits an existing text shape rather
	// than creating one.
	editID string
}

// OpenTextEdit starts a session at pos with the given text style.
func OpenTextEdit(pos shape.Point, data shape.TextData, metrics TextMetrics) *TextEditSession {
	data.Pos = pos
	s := &TextEditSession{state: SessionOpen, metrics: metrics, data: data}
	s.measure()
	return s
}

// EditExisting starts a session over an existing text shape.
func EditExisting(existing shape.Shape, metrics TextMetrics) *TextEditSession {
	s := &TextEditSession{state: SessionOpen, metrics: metrics, editID: existing.ID}
	if existing.Text != nil {
		s.data = *existing.Text
	}
	s.measure()
	return s
}

func (s *TextEditSession) State() SessionState { return s.state }
func (s *TextEditSession) Box() shape.Rect     { return s.box }

// SetText replaces the buffer and re-measures the overlay box.
func (s *TextEditSession) SetText(text string) {
	if s.state == SessionCommitted || s.state == SessionCancelled {
		return
	}
	s.state = SessionEditing
	s.data.Text = text
	s.measure()
}

func (s *TextEditSession) measure() {
	w, h := 0.0, s.data.FontSize
	if s.metrics != nil {
		// Measure line by line; the box wraps the widest line.
		for _, line := range strings.Split(s.data.Text, "\n") {
			lw, lh := s.metrics.Measure(line, s.data.FontFamily, s.data.FontSize)
			if lw > w {
				w = lw
			}
			h += lh
		}
	}
	s.box = geometry.Normalize(shape.Rect{X: s.data.Pos.X, Y: s.data.Pos.Y, W: w, H: h})
}

// Commit closes the session and returns the resulting text shape. Empty
// text commits as a cancel.
func (s *TextEditSession) Commit(style shape.Style) (shape.Shape, bool) {
	if s.state == SessionCommitted || s.state == SessionCancelled {
		return shape.Shape{}, false
	}
	if strings.TrimSpace(s.data.Text) == "" {
		s.state = SessionCancelled
		return shape.Shape{}, false
	}
	s.state = SessionCommitted
	out := geometry.NewText(s.data.Pos, s.box, s.data, style)
	if s.editID != "" {
		out.ID = s.editID
	}
	return out, true
}

// Cancel abandons the session.
func (s *TextEditSession) Cancel() {
	if s.state != SessionCommitted {
		s.state = SessionCancelled
	}
}
