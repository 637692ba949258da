package editor

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/edit"
	"git.lost.host/meutraa/fretedit/internal/events"
)

type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// CursorTo moves the cursor, snapped to the grid. While the button is held
// the active gesture follows it.
func (e *Session) CursorTo(tick Tick, fret chart.Fret) {
	tick = e.Song.Tempo.Snap(tick, e.Snap)
	if tick < 0 {
		tick = 0
	}
	if int(fret) >= chart.LaneCount {
		fret = chart.LaneCount - 1
	}
	e.Cursor, e.Fret = tick, fret
	if !e.pressed {
		return
	}

	// Every fret moves by the same offset, so the drag stops for all of
	// them once the earliest note reaches tick 0.
	cursor := tick
	if cursor < e.grab-e.floor {
		cursor = e.grab - e.floor
	}
	for _, m := range e.moves {
		m.Step(cursor)
	}
	for _, s := range e.sustains {
		s.Step(tick)
	}
}

// ButtonDown starts whatever the click at the cursor means.
//
// A ctrl click with notes selected starts stretching their sustains. A shift
// click selects every fret from the last click to the cursor. A plain click
// on a note selects it and starts dragging the selection; anywhere else it
// clears the selection.
func (e *Session) ButtonDown(mods Modifiers) {
	e.Cancel()
	e.pressed = true
	t := e.Track

	switch {
	case mods.Ctrl && !t.SelectionEmpty():
		for f, sel := range t.Selections {
			if sel.Empty() {
				continue
			}
			s := edit.BeginSustain(t.Notes[f], sel.Ticks())
			s.CapAtNext = true
			e.sustains = append(e.sustains, s)
		}
	case mods.Shift && e.anchor != events.NoTick:
		start, end := e.anchor, e.Cursor
		if start > end {
			start, end = end, start
		}
		t.SelectRange(start, end)
	case t.Notes[e.Fret].Contains(e.Cursor):
		sel := t.Selection(e.Fret)
		if !sel.Contains(e.Cursor) {
			t.ClearSelection()
			sel.Add(e.Cursor)
		}
		e.anchor = e.Cursor
		e.beginMove()
	default:
		t.ClearSelection()
		e.anchor = e.Cursor
	}
}

func (e *Session) beginMove() {
	ticks := e.Track.SelectedTicks()
	if len(ticks) == 0 {
		return
	}
	e.grab, e.floor = e.Cursor, ticks[0]
	for _, sel := range e.Track.Selections {
		if m := edit.BeginMove(sel, e.Cursor); m != nil {
			e.moves = append(e.moves, m)
		}
	}
}

// ButtonUp completes the gesture and records it as one undo step.
func (e *Session) ButtonUp() {
	if !e.pressed {
		return
	}
	e.pressed = false

	g := edit.NewGroup()
	for _, m := range e.moves {
		if a := m.Complete(); a != nil {
			g.Add(a)
		}
	}
	for _, s := range e.sustains {
		if a := s.Complete(); a != nil {
			g.Add(a)
		}
	}
	e.moves, e.sustains = nil, nil
	if len(g.Actions) == 0 {
		return
	}
	e.History.Push(g)
	e.changed()
}

// Cancel drops the gesture in flight and puts everything back.
func (e *Session) Cancel() {
	for i := len(e.sustains) - 1; i >= 0; i-- {
		e.sustains[i].Cancel()
	}
	for i := len(e.moves) - 1; i >= 0; i-- {
		e.moves[i].Cancel()
	}
	e.moves, e.sustains = nil, nil
	e.pressed = false
}
