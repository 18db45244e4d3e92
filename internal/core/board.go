package core

import (
	"sync"

	"github.com/dkeye/Sketch/internal/domain"
)

// Board holds one room's authoritative stroke state: the ordered
// history and the redo stack. The two never share a stroke id.
//
// All mutations take the board mutex, so concurrent handlers observe
// each operation as atomic.
type Board struct {
	mu      sync.Mutex
	history []domain.Stroke
	redo    []domain.Stroke
}

func NewBoard() *Board {
	return &Board{}
}

// ApplyFragment merges one incoming fragment into the history.
//
// A fragment with an unseen id is appended verbatim and invalidates the
// redo stack. A finalize (IsFinished with an end point) overwrites the
// tracked entry's points in place. Any other fragment for a known id is
// intentionally not merged: history keeps, per stroke id, either the
// first partial fragment or the final complete one, never an
// intermediate state. A client that resyncs mid-stroke sees the stroke
// frozen at its first-seen shape until the finalize lands.
//
// Returns true when the fragment started a new history entry.
func (b *Board) ApplyFragment(f domain.Stroke) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.history {
		if b.history[i].ID != f.ID {
			continue
		}
		if f.IsFinished && f.EndPoint != nil {
			b.history[i].Points = f.Points
			b.history[i].EndPoint = f.EndPoint
			b.history[i].IsFinished = true
		}
		return false
	}

	b.history = append(b.history, f)
	// A new stroke diverges from the state the undone strokes were
	// removed from; their redo lineage is gone.
	b.redo = b.redo[:0]
	return true
}

// Undo removes the most recently drawn finished stroke and pushes it
// onto the redo stack. The removed stroke is not necessarily the tail:
// an unfinished stroke may sit after it. Returns the resulting history
// snapshot and false when there is nothing to undo.
func (b *Board) Undo() ([]domain.Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	last := -1
	for i := len(b.history) - 1; i >= 0; i-- {
		if b.history[i].IsFinished {
			last = i
			break
		}
	}
	if last == -1 {
		return nil, false
	}

	removed := b.history[last]
	b.history = append(b.history[:last], b.history[last+1:]...)
	b.redo = append(b.redo, removed)
	return b.snapshot(), true
}

// Redo pops the most recently undone stroke and appends it to the tail
// of history. The stroke keeps its content but not its original index:
// strokes drawn after the undo now sort before it. Returns the
// resulting history snapshot and false when the redo stack is empty.
func (b *Board) Redo() ([]domain.Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.redo) == 0 {
		return nil, false
	}
	restored := b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	b.history = append(b.history, restored)
	return b.snapshot(), true
}

// Clear drops both history and the redo stack.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
	b.redo = nil
}

// History returns a copy of the current history for snapshot broadcasts.
func (b *Board) History() []domain.Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history)
}

func (b *Board) RedoLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.redo)
}

// snapshot must be called with the mutex held.
func (b *Board) snapshot() []domain.Stroke {
	out := make([]domain.Stroke, len(b.history))
	copy(out, b.history)
	return out
}
