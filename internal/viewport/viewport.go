// Package viewport tracks which events are on screen.
//
// A Viewport turns a playback or scroll position into a visible tick range.
// Every collection that is drawn gets a Window, which keeps the ordered list
// of ticks to display for that range. Moving the range monotonically in one
// direction only walks the keys that entered or left it; any other jump, an
// edit inside the range or a zoom change makes the next update rescan.
package viewport

import (
	"sort"

	"git.lost.host/meutraa/fretedit/internal/events"
)

type Tick = events.Tick

// Timeline is a collection a window can follow. Every *events.EventData
// satisfies it.
type Timeline interface {
	RelevantTicksInRange(start, end Tick) []Tick
	NextTick(tick Tick, inclusive bool) Tick
	PreviousTick(tick Tick, inclusive bool) Tick
	Extent(tick Tick) Tick
	Subscribe(fn func(events.Change)) func()
}

const (
	DefaultZoom   Tick = 24
	DefaultRows        = 40
	DefaultBehind      = 8
)

type Viewport struct {
	// Zoom is the number of ticks covered by one screen row.
	Zoom Tick
	// Rows is the height of the screen.
	Rows int
	// Behind is how many rows are drawn before the current position.
	Behind int

	position   Tick
	start, end Tick
	windows    []*Window
}

func New(zoom Tick, rows, behind int) *Viewport {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	if behind < 0 || behind >= rows {
		behind = 0
	}
	v := &Viewport{Zoom: zoom, Rows: rows, Behind: behind}
	v.start, v.end = v.bounds(0)
	return v
}

func (v *Viewport) bounds(position Tick) (Tick, Tick) {
	start := position - Tick(v.Behind)*v.Zoom
	return start, start + Tick(v.Rows)*v.Zoom - 1
}

// Range is the visible [start, end] tick range. Start may be negative.
func (v *Viewport) Range() (Tick, Tick) {
	return v.start, v.end
}

func (v *Viewport) Position() Tick {
	return v.position
}

// RowOf maps a tick to its screen row, counted from the top. Rows outside the
// screen are returned as is.
func (v *Viewport) RowOf(tick Tick) int {
	return int((tick - v.start) / v.Zoom)
}

// TickAt maps a screen row back to the first tick it covers.
func (v *Viewport) TickAt(row int) Tick {
	return v.start + Tick(row)*v.Zoom
}

// Watch starts tracking source and returns its window.
func (v *Viewport) Watch(source Timeline) *Window {
	w := &Window{source: source}
	w.unsubscribe = source.Subscribe(w.changed)
	w.update(v.start, v.end)
	v.windows = append(v.windows, w)
	return w
}

// Unwatch closes w and stops updating it.
func (v *Viewport) Unwatch(w *Window) {
	for i, o := range v.windows {
		if o == w {
			v.windows = append(v.windows[:i], v.windows[i+1:]...)
			break
		}
	}
	w.Close()
}

// Close detaches every window from its source.
func (v *Viewport) Close() {
	for _, w := range v.windows {
		w.Close()
	}
	v.windows = nil
}

// SetPosition moves the viewport so position sits Behind rows from the top.
func (v *Viewport) SetPosition(position Tick) {
	v.position = position
	v.start, v.end = v.bounds(position)
	v.Update()
}

// SetZoom changes the ticks per row. Every window rescans.
func (v *Viewport) SetZoom(zoom Tick) {
	if zoom <= 0 || zoom == v.Zoom {
		return
	}
	v.Zoom = zoom
	for _, w := range v.windows {
		w.valid = false
	}
	v.SetPosition(v.position)
}

// Resize changes the number of rows on screen.
func (v *Viewport) Resize(rows int) {
	if rows <= 0 || rows == v.Rows {
		return
	}
	v.Rows = rows
	if v.Behind >= rows {
		v.Behind = rows - 1
	}
	v.SetPosition(v.position)
}

// Update brings every window up to date with the current range.
func (v *Viewport) Update() {
	for _, w := range v.windows {
		w.update(v.start, v.end)
	}
}

// Invalidate forces a rescan of every window whose range touches [start, end].
func (v *Viewport) Invalidate(start, end Tick) {
	for _, w := range v.windows {
		w.changed(events.Change{Start: start, End: end})
	}
}

// Window is the displayed part of one collection.
type Window struct {
	source      Timeline
	unsubscribe func()

	// lead is the closest key before start whose extent reaches into the
	// range, or NoTick.
	lead       Tick
	keys       []Tick
	start, end Tick
	valid      bool

	// Rescans counts full rescans, Steps incremental updates.
	Rescans int
	Steps   int
}

func (w *Window) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

func (w *Window) changed(c events.Change) {
	// A change before the range can still move the lead.
	if c.Start <= w.end {
		w.valid = false
	}
}

func (w *Window) update(start, end Tick) {
	switch {
	case !w.valid:
		w.rescan(start, end)
	case start == w.start && end == w.end:
		return
	case start >= w.start && end >= w.end && start <= w.end:
		w.forward(start, end)
	case start <= w.start && end <= w.end && end >= w.start:
		w.backward(start, end)
	default:
		w.rescan(start, end)
	}
}

func (w *Window) rescan(start, end Tick) {
	w.Rescans++
	w.start, w.end = start, end
	w.lead = events.NoTick
	w.keys = w.source.RelevantTicksInRange(clamp(start), end)
	if len(w.keys) > 0 && w.keys[0] < start {
		w.lead = w.keys[0]
		w.keys = w.keys[1:]
	}
	w.valid = true
}

func (w *Window) forward(start, end Tick) {
	w.Steps++
	drop := sort.Search(len(w.keys), func(i int) bool { return w.keys[i] >= start })
	w.keys = w.keys[drop:]

	from := w.end
	if n := len(w.keys); n > 0 {
		from = w.keys[n-1]
	}
	for t := w.source.NextTick(from, false); t != events.NoTick && t <= end; t = w.source.NextTick(t, false) {
		w.keys = append(w.keys, t)
	}
	w.start, w.end = start, end
	w.findLead()
}

func (w *Window) backward(start, end Tick) {
	w.Steps++
	keep := sort.Search(len(w.keys), func(i int) bool { return w.keys[i] > end })
	w.keys = w.keys[:keep]

	from := w.start
	if len(w.keys) > 0 {
		from = w.keys[0]
	}
	var entering []Tick
	for t := w.source.PreviousTick(from, false); t != events.NoTick && t >= start; t = w.source.PreviousTick(t, false) {
		entering = append(entering, t)
	}
	if len(entering) > 0 {
		for i, j := 0, len(entering)-1; i < j; i, j = i+1, j-1 {
			entering[i], entering[j] = entering[j], entering[i]
		}
		w.keys = append(entering, w.keys...)
	}
	w.start, w.end = start, end
	w.findLead()
}

func (w *Window) findLead() {
	w.lead = events.NoTick
	if w.start <= 0 {
		return
	}
	if p := w.source.PreviousTick(w.start, false); p != events.NoTick && w.source.Extent(p) >= w.start {
		w.lead = p
	}
}

func clamp(t Tick) Tick {
	if t < 0 {
		return 0
	}
	return t
}

// EventsToDisplay returns the ordered ticks to draw: every key in range plus
// the closest earlier key whose sustain reaches into it.
func (w *Window) EventsToDisplay() []Tick {
	out := make([]Tick, 0, len(w.keys)+1)
	if w.lead != events.NoTick {
		out = append(out, w.lead)
	}
	return append(out, w.keys...)
}

func (w *Window) Len() int {
	if w.lead != events.NoTick {
		return len(w.keys) + 1
	}
	return len(w.keys)
}

// Relevant reports whether tick is currently displayed.
func (w *Window) Relevant(tick Tick) bool {
	if tick == w.lead && tick != events.NoTick {
		return true
	}
	i := sort.Search(len(w.keys), func(i int) bool { return w.keys[i] >= tick })
	return i < len(w.keys) && w.keys[i] == tick
}
