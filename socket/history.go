package socket

import "sketchsync/internal/shape"

// OpKind tags a logged durable mutation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpDelete OpKind = "delete"
	OpUpdate OpKind = "update"
)

// Operation is one invertible durable mutation. Create and Delete carry
// the full shape snapshot; Update carries both sides so it can run either
// direction.
type Operation struct {
	Kind    OpKind
	UserID  string
	ShapeID string
	Shape   shape.Shape // create/delete snapshot
	Prev    shape.Shape // update only
	Next    shape.Shape // update only
}

// DefaultHistorySize bounds the per-room operation log.
const DefaultHistorySize = 64

// opLog is a bounded FIFO of operations: appending past capacity drops
// the oldest entry.
type opLog struct {
	capacity int
	ops      []Operation
}

func (l *opLog) push(op Operation) {
	l.ops = append(l.ops, op)
	if len(l.ops) > l.capacity {
		l.ops = l.ops[len(l.ops)-l.capacity:]
	}
}

// removeLastBy removes the most recent operation by userID, which need not
// be the last entry overall.
func (l *opLog) removeLastBy(userID string) (Operation, bool) {
	for i := len(l.ops) - 1; i >= 0; i-- {
		if l.ops[i].UserID == userID {
			op := l.ops[i]
			l.ops = append(l.ops[:i], l.ops[i+1:]...)
			return op, true
		}
	}
	return Operation{}, false
}

func (l *opLog) len() int { return len(l.ops) }

// History holds one room's operation log and per-user redo stacks. It is
// only ever touched from the hub's run loop, so it carries no lock.
type History struct {
	log  opLog
	redo map[string][]Operation
}

// NewHistory builds a history with the given log capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		log:  opLog{capacity: capacity},
		redo: make(map[string][]Operation),
	}
}

// RecordDurable appends a fresh durable operation and clears every user's
// redo stack: once the timeline forks, no stale redo may be replayed.
func (h *History) RecordDurable(op Operation) {
	h.log.push(op)
	h.redo = make(map[string][]Operation)
}

// Undo removes the caller's most recent operation from the log and parks
// it on their redo stack. The caller applies the returned operation's
// inverse. Reports false when the user has nothing to undo.
func (h *History) Undo(userID string) (Operation, bool) {
	op, ok := h.log.removeLastBy(userID)
	if !ok {
		return Operation{}, false
	}
	h.redo[userID] = append(h.redo[userID], op)
	return op, true
}

// Redo pops the caller's redo stack and re-appends the operation at the
// log tail; relative ordering against other users' operations is not
// restored. The caller applies the operation's forward direction.
func (h *History) Redo(userID string) (Operation, bool) {
	stack := h.redo[userID]
	if len(stack) == 0 {
		return Operation{}, false
	}
	op := stack[len(stack)-1]
	h.redo[userID] = stack[:len(stack)-1]
	h.log.push(op)
	return op, true
}

// Reset drops the log and every redo stack.
func (h *History) Reset() {
	h.log.ops = nil
	h.redo = make(map[string][]Operation)
}

// Len is the number of logged operations.
func (h *History) Len() int { return h.log.len() }

// RedoDepth is the size of one user's redo stack.
func (h *History) RedoDepth(userID string) int { return len(h.redo[userID]) }
