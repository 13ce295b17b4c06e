package canvas

import "slices"

// Snapshot is an immutable copy of the pixel buffer together with the shapes
// committed at that instant.
type Snapshot struct {
	Width  int
	Height int
	pix    []byte
	shapes []ShapeRecord
}

// Shapes returns a copy of the shapes committed when the snapshot was taken.
func (s Snapshot) Shapes() []ShapeRecord {
	return slices.Clone(s.shapes)
}

// Pix returns a copy of the raw RGBA bytes.
func (s Snapshot) Pix() []byte {
	return slices.Clone(s.pix)
}

// History keeps full-frame undo and redo stacks. Each undo entry is the state
// right before a gesture mutated the buffer.
type History struct {
	undo     []Snapshot
	redo     []Snapshot
	maxDepth int
}

// NewHistory returns a history. maxDepth <= 0 means unbounded; otherwise the
// oldest undo entries are dropped past that depth.
func NewHistory(maxDepth int) *History {
	return &History{maxDepth: maxDepth}
}

// Push records the pre-mutation state s and discards the redo stack.
func (h *History) Push(s Snapshot) {
	h.undo = append(h.undo, s)
	h.redo = nil
	if h.maxDepth > 0 && len(h.undo) > h.maxDepth {
		drop := len(h.undo) - h.maxDepth
		clear(h.undo[:drop])
		h.undo = h.undo[drop:]
	}
}

// Undo pops the most recent pre-mutation state and parks current on the redo
// stack. ok is false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return top, true
}

// Redo pops the most recently undone state and parks current on the undo
// stack. ok is false when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return top, true
}

// Top returns the most recent undo entry without removing it.
func (h *History) Top() (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	return h.undo[len(h.undo)-1], true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the depths of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
