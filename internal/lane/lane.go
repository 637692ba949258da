package lane

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"golang.org/x/exp/slices"
)

type Tick = events.Tick

// DefaultHopoCutoff is the widest gap, in ticks, that still allows a hammer-on
// at the given resolution.
func DefaultHopoCutoff(resolution Tick) Tick {
	return resolution * 65 / 192
}

// Lane groups the note collections of every fret of one track. It keeps a
// derived view of the union of all fret keys with the number of frets at each
// tick, which answers chord and neighbour questions in O(log n).
//
// Edits to any fret collection are observed and the strum/hopo flags of the
// edited ticks and of the note right after them are recomputed.
type Lane struct {
	Notes      [chart.LaneCount]*events.EventData[chart.NoteEvent]
	Selections [chart.LaneCount]*events.Selection[chart.NoteEvent]
	HopoCutoff Tick

	unique      *events.EventData[uint8]
	unsubscribe []func()
	recomputing bool
}

func New(hopoCutoff Tick) *Lane {
	l := &Lane{
		HopoCutoff: hopoCutoff,
		unique:     events.New[uint8](),
	}
	for i := range l.Notes {
		l.Notes[i] = events.New[chart.NoteEvent]()
		l.Selections[i] = events.NewSelection(l.Notes[i])
		l.unsubscribe = append(l.unsubscribe, l.Notes[i].Subscribe(l.changed))
	}
	return l
}

// Close detaches the lane and its selections from the note collections.
func (l *Lane) Close() {
	for _, u := range l.unsubscribe {
		u()
	}
	l.unsubscribe = nil
	for _, s := range l.Selections {
		s.Close()
	}
}

func (l *Lane) changed(c events.Change) {
	if l.recomputing {
		return
	}
	l.syncUnique(c.Start, c.End)
	l.recomputeRange(c.Start, c.End)
}

func (l *Lane) count(t Tick) int {
	n := 0
	for _, notes := range l.Notes {
		if notes.Contains(t) {
			n++
		}
	}
	return n
}

func (l *Lane) syncUnique(start, end Tick) {
	candidates := l.unique.TicksInRange(start, end)
	for _, notes := range l.Notes {
		candidates = append(candidates, notes.TicksInRange(start, end)...)
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	for _, t := range candidates {
		if n := l.count(t); n == 0 {
			l.unique.Remove(t)
		} else {
			l.unique.Add(t, uint8(n))
		}
	}
}

// IsChord reports whether two or more frets hold a note at tick.
func (l *Lane) IsChord(tick Tick) bool {
	n, _ := l.unique.Get(tick)
	return n >= 2
}

// Contains reports whether any fret holds a note at tick.
func (l *Lane) Contains(tick Tick) bool {
	return l.unique.Contains(tick)
}

// TickBounds returns the closest note ticks before and after tick across all
// frets. Missing neighbours are NoTick.
func (l *Lane) TickBounds(tick Tick) (Tick, Tick) {
	return l.unique.PreviousTick(tick, false), l.unique.NextTick(tick, false)
}

// UniqueTicksInRange returns every tick in [start, end] holding a note.
func (l *Lane) UniqueTicksInRange(start, end Tick) []Tick {
	return l.unique.TicksInRange(start, end)
}

func (l *Lane) UniqueLen() int {
	return l.unique.Len()
}

// Unique exposes the derived view. Callers must not mutate it.
func (l *Lane) Unique() *events.EventData[uint8] {
	return l.unique
}

func (l *Lane) Selection(f chart.Fret) *events.Selection[chart.NoteEvent] {
	return l.Selections[f]
}

// AddNote places a note on fret at tick. An occupied fret and tick reports
// false and leaves the existing note alone.
func (l *Lane) AddNote(f chart.Fret, tick Tick, n chart.NoteEvent) bool {
	if int(f) >= chart.LaneCount || tick < 0 || l.Notes[f].Contains(tick) {
		return false
	}
	l.Notes[f].Add(tick, n)
	return true
}

func (l *Lane) RemoveNote(f chart.Fret, tick Tick) bool {
	if int(f) >= chart.LaneCount {
		return false
	}
	return l.Notes[f].Remove(tick)
}

// NaturalFlag is the flag a default oriented note at tick resolves to.
func (l *Lane) NaturalFlag(tick Tick) chart.Flag {
	if l.IsChord(tick) {
		return chart.Strum
	}
	prev := l.unique.PreviousTick(tick, false)
	if prev != events.NoTick && tick-prev < l.HopoCutoff {
		return chart.HOPO
	}
	return chart.Strum
}

// RecomputeFlagsAround refreshes the flags at tick and at the note after it.
// It returns the ticks whose flags changed.
func (l *Lane) RecomputeFlagsAround(tick Tick) []Tick {
	return l.recomputeRange(tick, tick)
}

func (l *Lane) recomputeRange(start, end Tick) []Tick {
	targets := l.unique.TicksInRange(start, end)
	if next := l.unique.NextTick(end, false); next != events.NoTick {
		targets = append(targets, next)
	}

	var changed []Tick
	for _, t := range targets {
		if l.applyNaturalFlag(t) {
			changed = append(changed, t)
		}
	}
	return changed
}

// applyNaturalFlag rewrites the default oriented notes at t. Tap notes and
// pinned notes keep their flag.
func (l *Lane) applyNaturalFlag(t Tick) bool {
	flag := l.NaturalFlag(t)
	changed := false
	l.each(t, func(_ chart.Fret, notes *events.EventData[chart.NoteEvent], n chart.NoteEvent) {
		if n.Flag == chart.Tap || !n.Default || n.Flag == flag {
			return
		}
		n.Flag = flag
		l.write(notes, t, n)
		changed = true
	})
	return changed
}

func (l *Lane) each(t Tick, fn func(chart.Fret, *events.EventData[chart.NoteEvent], chart.NoteEvent)) {
	for i, notes := range l.Notes {
		if n, ok := notes.Get(t); ok {
			fn(chart.Fret(i), notes, n)
		}
	}
}

// write stores a derived flag. Observers other than the lane still see it.
func (l *Lane) write(notes *events.EventData[chart.NoteEvent], t Tick, n chart.NoteEvent) {
	l.recomputing = true
	defer func() { l.recomputing = false }()
	notes.Set(t, n)
}

type FretNote struct {
	Fret chart.Fret
	Note chart.NoteEvent
}

// NotesAt returns every note at tick, ordered by fret.
func (l *Lane) NotesAt(tick Tick) []FretNote {
	var out []FretNote
	l.each(tick, func(f chart.Fret, _ *events.EventData[chart.NoteEvent], n chart.NoteEvent) {
		out = append(out, FretNote{Fret: f, Note: n})
	})
	return out
}

// PinFlag forces the flag of every note at tick and stops it from being
// derived automatically.
func (l *Lane) PinFlag(tick Tick, flag chart.Flag) bool {
	found := false
	l.each(tick, func(_ chart.Fret, notes *events.EventData[chart.NoteEvent], n chart.NoteEvent) {
		n.Flag = flag
		n.Default = false
		l.write(notes, tick, n)
		found = true
	})
	return found
}

// UnpinFlag returns the notes at tick to automatic flag derivation.
func (l *Lane) UnpinFlag(tick Tick) bool {
	found := false
	l.each(tick, func(_ chart.Fret, notes *events.EventData[chart.NoteEvent], n chart.NoteEvent) {
		n.Default = true
		if n.Flag == chart.Tap {
			n.Flag = chart.Strum
		}
		l.write(notes, tick, n)
		found = true
	})
	if found {
		l.applyNaturalFlag(tick)
	}
	return found
}

// SelectedTicks returns the union of the selected ticks of every fret.
func (l *Lane) SelectedTicks() []Tick {
	var ticks []Tick
	for _, s := range l.Selections {
		ticks = append(ticks, s.Ticks()...)
	}
	slices.Sort(ticks)
	return slices.Compact(ticks)
}

func (l *Lane) SelectionEmpty() bool {
	for _, s := range l.Selections {
		if !s.Empty() {
			return false
		}
	}
	return true
}

func (l *Lane) ClearSelection() {
	for _, s := range l.Selections {
		s.Clear()
	}
}

// SelectRange selects the notes of every fret in [start, end].
func (l *Lane) SelectRange(start, end Tick) int {
	n := 0
	for _, s := range l.Selections {
		n += s.AddInRange(start, end)
	}
	return n
}

// ToggleTapForSelection turns every selected chord into taps, or when any
// selected note is already a tap, turns them all back into their natural
// strum or hopo flag. The toggled ticks are returned.
func (l *Lane) ToggleTapForSelection() []Tick {
	ticks := l.SelectedTicks()
	if len(ticks) == 0 {
		return nil
	}

	off := false
	for _, s := range l.Selections {
		s.Each(func(_ Tick, n chart.NoteEvent) bool {
			off = n.Flag == chart.Tap
			return !off
		})
		if off {
			break
		}
	}

	for _, t := range ticks {
		flag := chart.Tap
		if off {
			flag = l.NaturalFlag(t)
		}
		l.each(t, func(_ chart.Fret, notes *events.EventData[chart.NoteEvent], n chart.NoteEvent) {
			if off {
				n.Default = true
			}
			n.Flag = flag
			l.write(notes, t, n)
		})
	}
	return ticks
}

type Counts struct {
	Notes    int // Distinct ticks
	Chords   int
	Sustains int
	HOPOs    int
	Taps     int
}

func (l *Lane) Counts() Counts {
	var c Counts
	l.unique.Each(func(t Tick, n uint8) bool {
		c.Notes++
		if n >= 2 {
			c.Chords++
		}
		sustained := false
		flag := chart.Strum
		l.each(t, func(_ chart.Fret, _ *events.EventData[chart.NoteEvent], note chart.NoteEvent) {
			if note.Sustain > 0 {
				sustained = true
			}
			flag = note.Flag
		})
		if sustained {
			c.Sustains++
		}
		switch flag {
		case chart.HOPO:
			c.HOPOs++
		case chart.Tap:
			c.Taps++
		}
		return true
	})
	return c
}

// Length is the last tick covered by any note.
func (l *Lane) Length() Tick {
	var end Tick
	for _, notes := range l.Notes {
		if e := maxExtent(notes); e > end {
			end = e
		}
	}
	return end
}

func maxExtent[T any](d *events.EventData[T]) Tick {
	var end Tick
	d.Each(func(t Tick, _ T) bool {
		if e := d.Extent(t); e > end {
			end = e
		}
		return true
	})
	return end
}
