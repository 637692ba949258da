package edit

import "git.lost.host/meutraa/fretedit/internal/events"

// Move is a drag of the selected entries across several frames.
//
// BeginMove records the selection. Every Step lifts the ghosts placed by the
// previous step, puts back whatever they had covered, and places the ghosts
// again at the new offset. Only entries at exactly the same tick as a ghost are
// displaced. Complete ends the gesture and returns the move as an Action;
// Cancel puts everything back where it was before the gesture.
type Move[T any] struct {
	Selection *events.Selection[T]
	Grab      Tick
	Offset    Tick

	original  *events.EventData[T]
	displaced *events.EventData[T]
	placed    []Tick
	final     Tick
	active    bool
}

// BeginMove starts dragging the selection from grab. Protected entries are
// not moved. It returns nil when there is nothing to move.
func BeginMove[T any](sel *events.Selection[T], grab Tick) *Move[T] {
	data := sel.Parent()
	original := events.New[T]()
	sel.Each(func(t Tick, v T) bool {
		if !data.IsProtected(t) {
			original.Add(t, v)
		}
		return true
	})
	if original.Len() == 0 {
		return nil
	}
	return &Move[T]{
		Selection: sel,
		Grab:      grab,
		original:  original,
		displaced: events.New[T](),
		placed:    original.Ticks(),
		active:    true,
	}
}

func (m *Move[T]) Active() bool {
	return m.active
}

// Ghosts returns the ticks the moved entries currently occupy.
func (m *Move[T]) Ghosts() []Tick {
	return append([]Tick(nil), m.placed...)
}

func (m *Move[T]) lift() {
	data := m.Selection.Parent()
	for _, t := range m.placed {
		data.Remove(t)
	}
	m.displaced.Each(func(t Tick, v T) bool {
		data.Add(t, v)
		return true
	})
	m.displaced = events.New[T]()
	m.placed = nil
}

func (m *Move[T]) place(offset Tick) {
	data := m.Selection.Parent()
	m.Selection.Clear()
	m.original.Each(func(t Tick, v T) bool {
		at := t + offset
		if old, ok := data.Get(at); ok {
			m.displaced.Add(at, old)
		}
		data.Add(at, v)
		m.placed = append(m.placed, at)
		m.Selection.Add(at)
		return true
	})
	m.Offset = offset
}

func (m *Move[T]) moveTo(offset Tick) {
	m.Selection.Parent().Batch(func() {
		m.lift()
		m.place(offset)
	})
}

// Step moves the ghosts so the grabbed tick sits at cursor. Nothing moves
// before tick 0. It reports whether the ghosts moved.
func (m *Move[T]) Step(cursor Tick) bool {
	if !m.active {
		return false
	}
	offset := cursor - m.Grab
	if min := -m.original.First(); offset < min {
		offset = min
	}
	if offset == m.Offset {
		return false
	}
	m.moveTo(offset)
	return true
}

// Complete ends the gesture. The returned action undoes and redoes the whole
// move; it is nil when the entries ended where they started.
func (m *Move[T]) Complete() Action {
	if !m.active {
		return nil
	}
	m.active = false
	m.final = m.Offset
	if m.final == 0 {
		return nil
	}
	return m
}

// Cancel ends the gesture and restores the state from before BeginMove.
func (m *Move[T]) Cancel() {
	if !m.active {
		return
	}
	m.active = false
	if m.Offset != 0 {
		m.moveTo(0)
	}
}

func (m *Move[T]) Invoke() bool {
	if m.active || m.Offset == m.final {
		return false
	}
	m.moveTo(m.final)
	return true
}

func (m *Move[T]) Revoke() bool {
	if m.active || m.Offset == 0 {
		return false
	}
	m.moveTo(0)
	return true
}
