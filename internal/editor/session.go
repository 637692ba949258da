// Package editor turns pointer signals and key commands into edits of one
// song. A Session is created when a chart is loaded and thrown away when it
// is unloaded, so nothing it owns outlives the chart.
package editor

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/edit"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/lane"
	"git.lost.host/meutraa/fretedit/internal/song"
	"git.lost.host/meutraa/fretedit/internal/viewport"
)

type Tick = events.Tick

// DefaultSnap places the cursor on sixteenth notes.
const DefaultSnap = 16

// Windows are the viewport windows the renderer draws from.
type Windows struct {
	Notes     [chart.LaneCount]*viewport.Window
	Starpower *viewport.Window
	Solos     *viewport.Window
	Tempo     *viewport.Window
	Sections  *viewport.Window
}

type Session struct {
	Song    *song.Song
	Key     chart.TrackKey
	Track   *lane.Track
	History *edit.History
	View    *viewport.Viewport
	Windows Windows

	// Snap is the note division the cursor snaps to, 0 turns snapping off.
	Snap   int
	Cursor Tick
	Fret   chart.Fret

	// Changed runs after every edit that reached the song.
	Changed func()

	clipboard clipboard
	anchor    Tick
	pressed   bool
	grab      Tick
	floor     Tick
	moves     []*edit.Move[chart.NoteEvent]
	sustains  []*edit.Sustain[chart.NoteEvent]
}

// New opens a session on the track k of s. The viewport is owned by the
// session from now on.
func New(s *song.Song, k chart.TrackKey, view *viewport.Viewport) *Session {
	if view == nil {
		view = viewport.New(viewport.DefaultZoom, viewport.DefaultRows, viewport.DefaultBehind)
	}
	e := &Session{
		Song:    s,
		History: edit.NewHistory(edit.DefaultHistoryLimit),
		View:    view,
		Snap:    DefaultSnap,
		anchor:  events.NoTick,
	}
	e.clipboard.reset()
	e.Windows.Tempo = view.Watch(s.Tempo.Tempo)
	e.Windows.Sections = view.Watch(s.Sections)
	e.SetTrack(k)
	return e
}

// SetTrack switches editing to another track. Gestures in flight are
// cancelled and the history is dropped, since its actions point at the
// previous track.
func (e *Session) SetTrack(k chart.TrackKey) {
	if e.Track != nil {
		e.Cancel()
		e.Track.ClearSelection()
		e.unwatchTrack()
	}
	e.Key = k
	e.Track = e.Song.Track(k)
	e.History.Clear()
	e.anchor = events.NoTick
	for f, notes := range e.Track.Notes {
		e.Windows.Notes[f] = e.View.Watch(notes)
	}
	e.Windows.Starpower = e.View.Watch(e.Track.Starpower)
	e.Windows.Solos = e.View.Watch(e.Track.Solos)
}

func (e *Session) unwatchTrack() {
	for f, w := range e.Windows.Notes {
		if w != nil {
			e.View.Unwatch(w)
			e.Windows.Notes[f] = nil
		}
	}
	for _, w := range []*viewport.Window{e.Windows.Starpower, e.Windows.Solos} {
		if w != nil {
			e.View.Unwatch(w)
		}
	}
	e.Windows.Starpower, e.Windows.Solos = nil, nil
}

// Close ends the session. The song stays open.
func (e *Session) Close() {
	e.Cancel()
	if e.Track != nil {
		e.Track.ClearSelection()
	}
	e.View.Close()
	e.History.Clear()
	e.clipboard.reset()
}

// Follow scrolls the viewport to tick, typically the play head.
func (e *Session) Follow(tick Tick) {
	e.View.SetPosition(tick)
}

func (e *Session) changed() {
	if e.Changed != nil {
		e.Changed()
	}
}

// do runs a through the history and reports whether it changed anything.
func (e *Session) do(a edit.Action) bool {
	if !e.History.Do(a) {
		return false
	}
	e.changed()
	return true
}

// Moving reports whether a drag is in progress, and Ghosts where the dragged
// notes currently sit.
func (e *Session) Moving() bool {
	return len(e.moves) > 0
}

func (e *Session) Ghosts() map[chart.Fret][]Tick {
	out := map[chart.Fret][]Tick{}
	for _, m := range e.moves {
		for f, sel := range e.Track.Selections {
			if sel == m.Selection {
				out[chart.Fret(f)] = m.Ghosts()
			}
		}
	}
	return out
}

// clipboard holds a copy of every fret, shifted by one shared origin so a
// chord pastes back as a chord.
type clipboard struct {
	frets [chart.LaneCount]*events.Clipboard[chart.NoteEvent]
	span  Tick
	full  bool
}

func (c *clipboard) reset() {
	for f := range c.frets {
		c.frets[f] = events.NewClipboard[chart.NoteEvent]()
	}
	c.span, c.full = 0, false
}

func (c *clipboard) copy(l *lane.Lane) bool {
	ticks := l.SelectedTicks()
	if len(ticks) == 0 {
		return false
	}
	origin := ticks[0]
	for f, sel := range l.Selections {
		c.frets[f].SetRelative(sel.Export(), origin)
	}
	c.span = ticks[len(ticks)-1] - origin
	c.full = true
	return true
}
