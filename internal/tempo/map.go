package tempo

import (
	"math"
	"sort"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
)

const (
	DefaultResolution events.Tick = 192
	DefaultBPM                    = 120.0
)

// Map converts between ticks and seconds under a piecewise constant tempo.
//
// Every tempo event caches its own timestamp. Any change to the tempo
// collection recomputes the timestamps after the change synchronously, so a
// conversion never observes stale data. Tick 0 always holds a tempo event
// and a time signature, and the tempo at tick 0 always starts at 0 seconds.
//
// An anchored tempo event keeps its timestamp. The BPM of the event before
// it is recomputed so the span between them matches, unless that would need
// a non-positive duration, in which case the anchor follows the cascade.
type Map struct {
	Resolution     events.Tick
	Tempo          *events.EventData[chart.TempoEvent]
	TimeSignatures *events.EventData[chart.TimeSignatureEvent]

	unsubscribe []func()
}

func New(resolution events.Tick, bpm float64) *Map {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	m := &Map{
		Resolution:     resolution,
		Tempo:          events.New[chart.TempoEvent](0),
		TimeSignatures: events.New[chart.TimeSignatureEvent](0),
	}
	m.Tempo.Add(0, chart.TempoEvent{BPM: bpm})
	m.TimeSignatures.Add(0, chart.CommonTime)
	m.unsubscribe = []func(){
		m.Tempo.Subscribe(m.tempoChanged),
		m.TimeSignatures.Subscribe(m.signatureChanged),
	}
	return m
}

// Close detaches the map from its collections.
func (m *Map) Close() {
	for _, u := range m.unsubscribe {
		u()
	}
	m.unsubscribe = nil
}

func (m *Map) tempoChanged(c events.Change) {
	if !m.Tempo.Contains(0) {
		bpm := DefaultBPM
		if m.Tempo.Len() > 0 {
			_, first := m.Tempo.At(0)
			bpm = first.BPM
		}
		// Recurses into tempoChanged with a change at 0, which rebuilds everything.
		m.Tempo.Add(0, chart.TempoEvent{BPM: bpm})
		return
	}
	m.recalculate(c.Start, c.End)
}

func (m *Map) signatureChanged(events.Change) {
	if !m.TimeSignatures.Contains(0) {
		m.TimeSignatures.Add(0, chart.CommonTime)
	}
}

// span is the duration of ticks at bpm.
func (m *Map) span(ticks events.Tick, bpm float64) float64 {
	return float64(ticks) / float64(m.Resolution) * 60 / bpm
}

// RecalculateFrom recomputes the timestamps of the tempo events from the
// first one at or after tick. It returns how many events were recomputed.
func (m *Map) RecalculateFrom(tick events.Tick) int {
	return m.recalculate(tick, tick)
}

// recalculate walks forward from the event before from. Events up to until
// are always recomputed. Past until the walk stops at the first event whose
// timestamp did not move, since nothing after it can have moved either.
func (m *Map) recalculate(from, until events.Tick) int {
	if from < 0 {
		from = 0
	}
	seed := m.Tempo.PreviousTick(from, false)
	if seed == events.NoTick {
		seed = 0
	}

	recomputed := 0
	var prevTick events.Tick
	var prev *chart.TempoEvent
	m.Tempo.Cascade(seed, func(t events.Tick, ev *chart.TempoEvent) bool {
		if prev == nil {
			if t == 0 {
				ev.Seconds = 0
			}
			prevTick, prev = t, ev
			return true
		}

		seconds := prev.Seconds + m.span(t-prevTick, prev.BPM)
		if ev.Anchor && ev.Seconds > prev.Seconds {
			prev.BPM = float64(t-prevTick) / float64(m.Resolution) * 60 / (ev.Seconds - prev.Seconds)
			seconds = ev.Seconds
		}
		moved := seconds != ev.Seconds
		ev.Seconds = seconds
		recomputed++

		prevTick, prev = t, ev
		return moved || t <= until
	})
	return recomputed
}

// TickToSeconds returns the wall clock time of tick.
func (m *Map) TickToSeconds(tick events.Tick) float64 {
	at := m.Tempo.PreviousTick(tick, true)
	if at == events.NoTick {
		at = m.Tempo.First()
	}
	ev, _ := m.Tempo.Get(at)
	return ev.Seconds + m.span(tick-at, ev.BPM)
}

// SecondsToTick returns the tick closest to seconds.
func (m *Map) SecondsToTick(seconds float64) events.Tick {
	n := m.Tempo.Len()
	i := sort.Search(n, func(i int) bool {
		_, ev := m.Tempo.At(i)
		return ev.Seconds > seconds
	}) - 1
	if i < 0 {
		i = 0
	}
	t, ev := m.Tempo.At(i)
	return t + events.Tick(math.Round((seconds-ev.Seconds)*ev.BPM/60*float64(m.Resolution)))
}

// Duration is the number of seconds between two ticks.
func (m *Map) Duration(start, end events.Tick) float64 {
	return m.TickToSeconds(end) - m.TickToSeconds(start)
}

// BPMAt returns the tempo in effect at tick.
func (m *Map) BPMAt(tick events.Tick) float64 {
	at := m.Tempo.PreviousTick(tick, true)
	if at == events.NoTick {
		at = 0
	}
	ev, _ := m.Tempo.Get(at)
	return ev.BPM
}

// TimeSignatureAt returns the signature in effect at tick and where it starts.
func (m *Map) TimeSignatureAt(tick events.Tick) (events.Tick, chart.TimeSignatureEvent) {
	at := m.TimeSignatures.PreviousTick(tick, true)
	if at == events.NoTick {
		at = 0
	}
	ts, ok := m.TimeSignatures.Get(at)
	if !ok || !ts.Valid() {
		ts = chart.CommonTime
	}
	return at, ts
}

// SetBPM changes the tempo at tick, creating a tempo event when needed.
func (m *Map) SetBPM(tick events.Tick, bpm float64) {
	ev, ok := m.Tempo.Get(tick)
	if !ok {
		m.Tempo.Add(tick, chart.TempoEvent{BPM: bpm})
		return
	}
	ev.BPM = bpm
	m.Tempo.Set(tick, ev)
}

// PinSeconds anchors the tempo event at tick to seconds. The tempo before it
// is stretched to meet the anchor. Tick 0 cannot move and is never pinned.
func (m *Map) PinSeconds(tick events.Tick, seconds float64) bool {
	ev, ok := m.Tempo.Get(tick)
	if !ok || tick == 0 {
		return false
	}
	ev.Anchor = true
	ev.Seconds = seconds
	return m.Tempo.Set(tick, ev)
}

// Unpin releases an anchor, letting the cascade move it again.
func (m *Map) Unpin(tick events.Tick) bool {
	ev, ok := m.Tempo.Get(tick)
	if !ok || !ev.Anchor {
		return false
	}
	ev.Anchor = false
	return m.Tempo.Set(tick, ev)
}

// nextAnchor returns the first anchored tempo event after tick, or NoTick.
func (m *Map) nextAnchor(tick events.Tick) events.Tick {
	for t := m.Tempo.NextTick(tick, false); t != events.NoTick; t = m.Tempo.NextTick(t, false) {
		if ev, _ := m.Tempo.Get(t); ev.Anchor {
			return t
		}
	}
	return events.NoTick
}

// EditSpan is the range of tempo events an edit of [start, end] can rewrite:
// the event before start, whose BPM an anchor may restretch, up to the first
// anchor after end.
func (m *Map) EditSpan(start, end events.Tick) (events.Tick, events.Tick) {
	lo := m.Tempo.PreviousTick(start, false)
	if lo == events.NoTick {
		lo = 0
	}
	hi := end
	if a := m.nextAnchor(end); a != events.NoTick {
		hi = a
	}
	return lo, hi
}

// Stretched reports whether a tempo at tick is directly followed by an
// anchor, so its BPM is derived rather than chosen.
func (m *Map) Stretched(tick events.Tick) bool {
	next := m.Tempo.NextTick(tick, false)
	if next == events.NoTick {
		return false
	}
	ev, _ := m.Tempo.Get(next)
	return ev.Anchor
}

// Snap rounds tick to the closest 1/division note.
func (m *Map) Snap(tick events.Tick, division int) events.Tick {
	if division <= 0 {
		return tick
	}
	step := float64(m.Resolution) * 4 / float64(division)
	if step < 1 {
		return tick
	}
	return events.Tick(math.Round(float64(tick)/step) * step)
}
