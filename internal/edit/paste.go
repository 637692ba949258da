package edit

import "git.lost.host/meutraa/fretedit/internal/events"

// Copy stores the selected entries in the clipboard, shifted so the first
// one sits at zero.
func Copy[T any](sel *events.Selection[T], clip *events.Clipboard[T]) bool {
	if sel.Empty() {
		return false
	}
	clip.Set(sel.Export())
	return true
}

// Paste clears [At, At+span] and writes the clipboard there, leaving the
// pasted entries selected. The whole write is one batch and nothing can fail
// once it has started, so observers never see half a paste. Pasting the same
// clipboard twice at the same tick yields the same state as pasting once.
type Paste[T any] struct {
	Selection *events.Selection[T]
	At        Tick
	// Span widens the cleared range past the last clipboard entry.
	Span   Tick
	Placed []Tick

	data *events.EventData[T]
	pre  *events.EventData[T]
}

func NewPaste[T any](sel *events.Selection[T], clip *events.Clipboard[T], at Tick) *Paste[T] {
	if at < 0 {
		at = 0
	}
	return &Paste[T]{Selection: sel, At: at, data: clip.Data()}
}

func (a *Paste[T]) end() Tick {
	span := a.Span
	if a.data.Len() > 0 && a.data.Last() > span {
		span = a.data.Last()
	}
	return a.At + span
}

func (a *Paste[T]) Invoke() bool {
	if a.data.Len() == 0 && a.Span == 0 {
		return false
	}
	parent := a.Selection.Parent()
	pre := capture(parent, a.At, a.end())
	if a.data.Len() == 0 && pre.Len() == 0 {
		return false
	}
	a.pre = pre
	parent.Batch(func() {
		parent.PopTicksInRange(a.At, a.end())
		a.Selection.Clear()
		a.Placed = a.Selection.ApplyScaled(a.data, a.At)
	})
	return true
}

func (a *Paste[T]) Revoke() bool {
	if a.pre == nil {
		return false
	}
	restore(a.Selection.Parent(), a.At, a.end(), a.pre)
	a.Selection.Clear()
	a.pre = nil
	return true
}

// Cut copies the selection to the clipboard and deletes it.
type Cut[T any] struct {
	*Delete[T]
	Clipboard *events.Clipboard[T]
}

func NewCut[T any](sel *events.Selection[T], clip *events.Clipboard[T]) *Cut[T] {
	return &Cut[T]{Delete: NewDelete(sel), Clipboard: clip}
}

func (a *Cut[T]) Invoke() bool {
	if a.removed == nil && !Copy(a.Selection, a.Clipboard) {
		return false
	}
	return a.Delete.Invoke()
}
