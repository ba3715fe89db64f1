package socket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchsync/internal/shape"
)

func createOp(userID, shapeID string) Operation {
	return Operation{
		Kind:    OpCreate,
		UserID:  userID,
		ShapeID: shapeID,
		Shape:   shape.Shape{ID: shapeID, Kind: shape.Rectangle, Box: shape.Rect{W: 10, H: 10}},
	}
}

func TestUndoReturnsCallersMostRecentOp(t *testing.T) {
	h := NewHistory(8)
	h.RecordDurable(createOp("alice", "s1"))
	h.RecordDurable(createOp("bob", "s2"))
	h.RecordDurable(createOp("alice", "s3"))

	op, ok := h.Undo("alice")
	require.True(t, ok)
	assert.Equal(t, "s3", op.ShapeID)
	assert.Equal(t, 2, h.Len())
}

func TestUndoRemovesOutOfOrder(t *testing.T) {
	// Alice's op is buried under Bob's; undo must pull it out of the
	// middle of the log, leaving Bob's untouched.
	h := NewHistory(8)
	h.RecordDurable(createOp("alice", "s1"))
	h.RecordDurable(createOp("bob", "s2"))

	op, ok := h.Undo("alice")
	require.True(t, ok)
	assert.Equal(t, "s1", op.ShapeID)

	op, ok = h.Undo("bob")
	require.True(t, ok)
	assert.Equal(t, "s2", op.ShapeID)
}

func TestUndoWithNothingLoggedIsNoop(t *testing.T) {
	h := NewHistory(8)
	h.RecordDurable(createOp("bob", "s1"))

	_, ok := h.Undo("alice")
	assert.False(t, ok)
	assert.Equal(t, 1, h.Len())
}

func TestUndoThenRedoReproducesIdenticalOp(t *testing.T) {
	h := NewHistory(8)
	original := createOp("alice", "s1")
	h.RecordDurable(original)

	undone, ok := h.Undo("alice")
	require.True(t, ok)
	require.Equal(t, 1, h.RedoDepth("alice"))

	redone, ok := h.Redo("alice")
	require.True(t, ok)
	assert.Equal(t, undone, redone)
	assert.Equal(t, original.Shape, redone.Shape)
	assert.Equal(t, 1, h.Len())
	assert.Zero(t, h.RedoDepth("alice"))
}

func TestRedoOnEmptyStackIsNoop(t *testing.T) {
	h := NewHistory(8)
	_, ok := h.Redo("alice")
	assert.False(t, ok)
}

func TestAnyDurableOpClearsEveryRedoStack(t *testing.T) {
	// Branch invalidation is global: Bob's new op kills Alice's pending
	// redo even though she was not involved.
	h := NewHistory(8)
	h.RecordDurable(createOp("alice", "s1"))
	_, ok := h.Undo("alice")
	require.True(t, ok)
	require.Equal(t, 1, h.RedoDepth("alice"))

	h.RecordDurable(createOp("bob", "s2"))
	assert.Zero(t, h.RedoDepth("alice"))
	_, ok = h.Redo("alice")
	assert.False(t, ok)
}

func TestLogCapDropsOldestEntries(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.RecordDurable(createOp("alice", fmt.Sprintf("s%d", i)))
	}
	assert.Equal(t, 3, h.Len())

	// The two oldest are gone: three undos drain the log entirely.
	for i := 0; i < 3; i++ {
		_, ok := h.Undo("alice")
		require.True(t, ok)
	}
	_, ok := h.Undo("alice")
	assert.False(t, ok)
}

func TestResetDropsLogAndStacks(t *testing.T) {
	h := NewHistory(8)
	h.RecordDurable(createOp("alice", "s1"))
	_, _ = h.Undo("alice")

	h.Reset()
	assert.Zero(t, h.Len())
	assert.Zero(t, h.RedoDepth("alice"))
}
