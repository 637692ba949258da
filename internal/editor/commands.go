package editor

import (
	"errors"
	"strings"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/edit"
	"git.lost.host/meutraa/fretedit/internal/events"
)

// Command is an editing operation that needs no argument besides the cursor
// and the selection.
type Command uint8

const (
	AddNote Command = iota
	Delete
	Copy
	Cut
	Paste
	Undo
	Redo
	ToggleTap
	ToggleForced
	AddStarpower
	ToggleAnchor
	RemoveTempo
	SelectAll
	ClearSelection
	ScrollUp
	ScrollDown
	ZoomIn
	ZoomOut
	CancelGesture
)

var commandNames = map[Command]string{
	AddNote:        "add-note",
	Delete:         "delete",
	Copy:           "copy",
	Cut:            "cut",
	Paste:          "paste",
	Undo:           "undo",
	Redo:           "redo",
	ToggleTap:      "toggle-tap",
	ToggleForced:   "toggle-forced",
	AddStarpower:   "add-starpower",
	ToggleAnchor:   "toggle-anchor",
	RemoveTempo:    "remove-tempo",
	SelectAll:      "select-all",
	ClearSelection: "clear-selection",
	ScrollUp:       "scroll-up",
	ScrollDown:     "scroll-down",
	ZoomIn:         "zoom-in",
	ZoomOut:        "zoom-out",
	CancelGesture:  "cancel",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "unknown"
}

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand is the inverse of Command.String.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range commandNames {
		if name == s {
			return c, nil
		}
	}
	return 0, ErrUnknownCommand
}

const (
	minZoom Tick = 1
	maxZoom Tick = 768
)

// Do runs c and reports whether it changed the song or the view.
func (e *Session) Do(c Command) bool {
	if e.pressed && c != CancelGesture {
		return false
	}
	t := e.Track
	switch c {
	case AddNote:
		return e.do(edit.NewCreate(t.Notes[e.Fret], t.Selection(e.Fret), e.Cursor, chart.NewNote(0)))
	case Delete:
		return e.do(e.deleteSelection())
	case Copy:
		return e.clipboard.copy(t.Lane)
	case Cut:
		if !e.clipboard.copy(t.Lane) {
			return false
		}
		return e.do(e.deleteSelection())
	case Paste:
		return e.paste()
	case Undo:
		if !e.History.Undo() {
			return false
		}
		e.changed()
		return true
	case Redo:
		if !e.History.Redo() {
			return false
		}
		e.changed()
		return true
	case ToggleTap:
		if t.SelectionEmpty() {
			return false
		}
		return e.do(newFlagEdit(t.Lane, func() { t.ToggleTapForSelection() }))
	case ToggleForced:
		if t.SelectionEmpty() {
			return false
		}
		return e.do(newFlagEdit(t.Lane, e.toggleForced))
	case AddStarpower:
		return e.addStarpower()
	case ToggleAnchor:
		return e.toggleAnchor()
	case RemoveTempo:
		return e.tempoEdit(edit.NewDeleteRange(e.Song.Tempo.Tempo, e.Cursor, e.Cursor))
	case SelectAll:
		return t.SelectRange(0, t.Length()) > 0
	case ClearSelection:
		if t.SelectionEmpty() {
			return false
		}
		t.ClearSelection()
		return true
	case ScrollUp:
		return e.Scroll(1)
	case ScrollDown:
		return e.Scroll(-1)
	case ZoomIn:
		return e.Zoom(e.View.Zoom / 2)
	case ZoomOut:
		return e.Zoom(e.View.Zoom * 2)
	case CancelGesture:
		busy := e.pressed
		e.Cancel()
		return busy
	}
	return false
}

func (e *Session) deleteSelection() edit.Action {
	t := e.Track
	g := edit.NewGroup()
	for _, sel := range t.Selections {
		if !sel.Empty() {
			g.Add(edit.NewDelete(sel))
		}
	}
	if !t.StarpowerSelection.Empty() {
		g.Add(edit.NewDelete(t.StarpowerSelection))
	}
	if !t.SoloSelection.Empty() {
		g.Add(edit.NewDelete(t.SoloSelection))
	}
	if len(g.Actions) == 0 {
		return nil
	}
	return g
}

// paste writes the clipboard at the cursor. Every fret clears the same range,
// so a pasted chord replaces whatever chord was there.
func (e *Session) paste() bool {
	if !e.clipboard.full {
		return false
	}
	t := e.Track
	t.ClearSelection()
	g := edit.NewGroup()
	for f, clip := range e.clipboard.frets {
		p := edit.NewPaste(t.Selection(chart.Fret(f)), clip, e.Cursor)
		p.Span = e.clipboard.span
		g.Add(p)
	}
	return e.do(g)
}

// toggleForced pins the selected ticks to the opposite of their natural flag,
// or releases them when any of them is already pinned.
func (e *Session) toggleForced() {
	l := e.Track.Lane
	ticks := l.SelectedTicks()
	pinned := false
	for _, t := range ticks {
		for _, n := range l.NotesAt(t) {
			if !n.Note.Default && n.Note.Flag != chart.Tap {
				pinned = true
			}
		}
	}
	for _, t := range ticks {
		if pinned {
			l.UnpinFlag(t)
			continue
		}
		flag := chart.HOPO
		if l.NaturalFlag(t) == chart.HOPO {
			flag = chart.Strum
		}
		l.PinFlag(t, flag)
	}
}

// addStarpower covers the selected notes with one phrase.
func (e *Session) addStarpower() bool {
	t := e.Track
	ticks := t.SelectedTicks()
	if len(ticks) == 0 {
		return false
	}
	start, end := ticks[0], ticks[len(ticks)-1]
	for _, n := range t.NotesAt(end) {
		if n.Note.EndTick(end) > end {
			end = n.Note.EndTick(end)
		}
	}
	return e.do(edit.NewCreate(t.Starpower, t.StarpowerSelection, start, chart.StarpowerEvent{Sustain: end - start}))
}

var (
	ErrInvalidBPM = errors.New("bpm must be positive")
	ErrAnchored   = errors.New("tempo is stretched to meet the next anchor")
)

// tempoEdit records a tempo action together with every event it can rewrite
// at the cursor, so undo also restores the BPMs restretched by anchors.
func (e *Session) tempoEdit(a edit.Action) bool {
	m, at := e.Song.Tempo, e.Cursor
	return e.do(edit.NewSpan(m.Tempo, func() (Tick, Tick) { return m.EditSpan(at, at) }, a))
}

// SetTempo changes the tempo at the cursor, adding a tempo event when there
// is none there. A tempo directly followed by an anchor is derived from the
// anchor and cannot be set.
func (e *Session) SetTempo(bpm float64) error {
	if bpm <= 0 {
		return ErrInvalidBPM
	}
	m := e.Song.Tempo
	if m.Stretched(e.Cursor) {
		return ErrAnchored
	}
	ev, ok := m.Tempo.Get(e.Cursor)
	if !ok {
		e.tempoEdit(edit.NewCreate(m.Tempo, nil, e.Cursor, chart.TempoEvent{BPM: bpm}))
		return nil
	}
	if ev.BPM == bpm {
		return nil
	}
	ev.BPM = bpm
	e.tempoEdit(edit.NewReplace(m.Tempo, e.Cursor, ev))
	return nil
}

// toggleAnchor pins the tempo event at the cursor to its current time, or
// releases it.
func (e *Session) toggleAnchor() bool {
	if e.Cursor == 0 {
		return false
	}
	data := e.Song.Tempo.Tempo
	ev, ok := data.Get(e.Cursor)
	if !ok {
		return false
	}
	ev.Anchor = !ev.Anchor
	return e.tempoEdit(edit.NewReplace(data, e.Cursor, ev))
}

// AddSection names the section starting at the cursor.
func (e *Session) AddSection(name string) bool {
	return e.label(e.Song.Sections, name)
}

func (e *Session) AddBookmark(name string) bool {
	return e.label(e.Song.Bookmarks, name)
}

func (e *Session) label(data *events.EventData[chart.Label], name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := data.Get(e.Cursor); ok {
		return e.do(edit.NewReplace(data, e.Cursor, chart.Label{Text: name}))
	}
	return e.do(edit.NewCreate(data, nil, e.Cursor, chart.Label{Text: name}))
}

// Scroll moves the view by rows screen rows, later in the song for positive
// values. The view never starts before tick 0.
func (e *Session) Scroll(rows int) bool {
	pos := e.View.Position() + Tick(rows)*e.View.Zoom
	if pos < 0 {
		pos = 0
	}
	if pos == e.View.Position() {
		return false
	}
	e.View.SetPosition(pos)
	return true
}

// Zoom sets the ticks per row, within [1, 768].
func (e *Session) Zoom(zoom Tick) bool {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	if zoom == e.View.Zoom {
		return false
	}
	e.View.SetZoom(zoom)
	return true
}
