package render

import (
	"fmt"
	"strings"
	"time"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/editor"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/theme"
	"git.lost.host/meutraa/fretedit/internal/viewport"
)

type Tick = events.Tick

// Highway draws the viewport of a session as lanes scrolling upwards: the
// earliest visible row is at the bottom.
type Highway struct {
	Theme theme.Theme
	// Top is the screen row of the latest visible tick.
	Top int
	// Column is the screen column of the green lane.
	Column  int
	Spacing int
	// Width of the screen, used to blank the marker column and status line.
	Width int

	labels map[Tick]label
	idle   *viewport.IdleTracker[Tick]
}

type label struct {
	bpm  float64
	text string
}

func NewHighway(th theme.Theme, column, spacing, width int) *Highway {
	if spacing <= 0 {
		spacing = 2
	}
	return &Highway{
		Theme:   th,
		Top:     1,
		Column:  column,
		Spacing: spacing,
		Width:   width,
		labels:  map[Tick]label{},
		idle:    viewport.NewIdleTracker[Tick](viewport.DefaultGrace),
	}
}

func (h *Highway) lane(f chart.Fret) int {
	return h.Column + int(f)*h.Spacing
}

func (h *Highway) markers() int {
	return h.lane(chart.LaneCount-1) + h.Spacing + 2
}

// row maps a tick to its screen row, or reports false when it is not on
// screen.
func (h *Highway) row(v *viewport.Viewport, tick Tick) (int, bool) {
	start, _ := v.Range()
	if tick < start {
		return 0, false
	}
	r := v.RowOf(tick)
	if r >= v.Rows {
		return 0, false
	}
	return h.Top + v.Rows - 1 - r, true
}

// StatusRow is the screen row of the status line.
func (h *Highway) StatusRow(v *viewport.Viewport) int {
	return h.Top + v.Rows
}

// Draw redraws the whole highway of e. Status is printed under it.
func (h *Highway) Draw(f Filler, e *editor.Session, now time.Time, status string) {
	v := e.View
	v.Update()
	h.grid(f, e)
	h.notes(f, e)
	h.cursor(f, e)
	h.labelColumn(f, e, now)

	line := h.Theme.RenderStatus(status)
	if pad := h.Width - len([]rune(status)); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	f.Fill(h.StatusRow(v), 1, line)
}

func (h *Highway) grid(f Filler, e *editor.Session) {
	v := e.View
	start, end := v.Range()
	lines := make([]theme.Line, v.Rows)
	for _, g := range e.Song.Tempo.GridLines(start, end) {
		r := v.RowOf(g.Tick)
		if r < 0 || r >= v.Rows {
			continue
		}
		if g.Measure {
			lines[r] = theme.MeasureLine
		} else if lines[r] == theme.NoLine {
			lines[r] = theme.BeatLine
		}
	}
	for r, l := range lines {
		row := h.Top + v.Rows - 1 - r
		for fret := chart.Fret(0); fret < chart.LaneCount; fret++ {
			f.Fill(row, h.lane(fret), h.Theme.RenderLane(fret, l))
		}
	}
}

func (h *Highway) notes(f Filler, e *editor.Session) {
	v := e.View
	track := e.Track
	ghosts := e.Ghosts()
	for i, w := range e.Windows.Notes {
		fret := chart.Fret(i)
		notes := track.Notes[i]
		sel := track.Selection(fret)
		moving := map[Tick]bool{}
		for _, t := range ghosts[fret] {
			moving[t] = true
		}

		for _, t := range w.EventsToDisplay() {
			n, ok := notes.Get(t)
			if !ok {
				continue
			}
			var mark theme.Mark
			if sel.Contains(t) {
				mark |= theme.Selected
			}
			if track.InStarpower(t) {
				mark |= theme.Starpower
			}
			if moving[t] {
				mark |= theme.Ghost
			}

			// Sustain rows sit above the note, up to its end.
			for s := t + v.Zoom; s <= n.EndTick(t); s += v.Zoom {
				if row, ok := h.row(v, s); ok {
					f.Fill(row, h.lane(fret), h.Theme.RenderSustain(fret, mark))
				}
			}
			if row, ok := h.row(v, t); ok {
				f.Fill(row, h.lane(fret), h.Theme.RenderNote(fret, n, mark))
			}
		}
	}
}

func (h *Highway) cursor(f Filler, e *editor.Session) {
	if e.Track.Notes[e.Fret].Contains(e.Cursor) {
		return
	}
	if row, ok := h.row(e.View, e.Cursor); ok {
		f.Fill(row, h.lane(e.Fret), h.Theme.RenderCursor(e.Fret))
	}
}

// labelColumn draws tempos, signatures and sections beside the lanes. The
// formatted tempo labels are cached until they have been off screen for a
// while.
func (h *Highway) labelColumn(f Filler, e *editor.Session, now time.Time) {
	v := e.View
	col := h.markers()
	width := h.Width - col
	if width <= 0 {
		width = 24
	}
	blank := strings.Repeat(" ", width)
	texts := make([][]string, v.Rows)
	kinds := make([]theme.Marker, v.Rows)

	add := func(t Tick, kind theme.Marker, text string) {
		r := v.RowOf(t)
		if r < 0 || r >= v.Rows {
			return
		}
		if len(texts[r]) == 0 {
			kinds[r] = kind
		}
		texts[r] = append(texts[r], text)
	}

	tempo := e.Song.Tempo
	for _, t := range e.Windows.Tempo.EventsToDisplay() {
		add(t, theme.TempoMarker, h.tempoLabel(t, tempo.BPMAt(t), now))
	}
	start, end := v.Range()
	for _, t := range tempo.TimeSignatures.TicksInRange(start, end) {
		ts, _ := tempo.TimeSignatures.Get(t)
		add(t, theme.SignatureMarker, fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator))
	}
	for _, t := range e.Windows.Sections.EventsToDisplay() {
		if l, ok := e.Song.Sections.Get(t); ok {
			add(t, theme.SectionMarker, l.Text)
		}
	}
	for _, t := range e.Song.Bookmarks.TicksInRange(start, end) {
		l, _ := e.Song.Bookmarks.Get(t)
		add(t, theme.BookmarkMarker, "> "+l.Text)
	}

	for r := 0; r < v.Rows; r++ {
		row := h.Top + v.Rows - 1 - r
		f.Fill(row, col, blank)
		if len(texts[r]) > 0 {
			text := strings.Join(texts[r], " ")
			if runes := []rune(text); len(runes) > width {
				text = string(runes[:width])
			}
			f.Fill(row, col, h.Theme.RenderMarker(kinds[r], text))
		}
	}

	h.idle.Sweep(now, e.Windows.Tempo.Relevant, func(t Tick) {
		delete(h.labels, t)
	})
}

func (h *Highway) tempoLabel(t Tick, bpm float64, now time.Time) string {
	h.idle.Touch(t, now)
	if l, ok := h.labels[t]; ok && l.bpm == bpm {
		return l.text
	}
	l := label{bpm: bpm, text: fmt.Sprintf("♩=%g", bpm)}
	h.labels[t] = l
	return l.text
}

// CachedLabels is the number of formatted tempo labels kept.
func (h *Highway) CachedLabels() int {
	return len(h.labels)
}
