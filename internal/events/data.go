package events

import (
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Tick is a position in musical time. Resolution ticks make up one quarter note.
type Tick int32

// NoTick is returned by lookups that find nothing. It never collides with a
// stored key since keys are clamped to zero or above.
const NoTick Tick = -1

// Change describes a mutation of an EventData over the inclusive range
// [Start, End]. Removed is set when at least one key disappeared.
type Change struct {
	Start, End Tick
	Removed    bool
}

// Overlaps reports whether the change touches [start, end].
func (c Change) Overlaps(start, end Tick) bool {
	return c.Start <= end && c.End >= start
}

func (c Change) merge(o Change) Change {
	if o.Start < c.Start {
		c.Start = o.Start
	}
	if o.End > c.End {
		c.End = o.End
	}
	c.Removed = c.Removed || o.Removed
	return c
}

// Extender is implemented by payloads that last past their start tick, such
// as sustained notes or solo ranges.
type Extender interface {
	EndTick(at Tick) Tick
}

type observer struct {
	fn func(Change)
}

// EventData is an ordered map from tick to payload. Keys are unique and kept
// in strictly increasing order.
type EventData[T any] struct {
	ticks     []Tick
	values    []T
	protected map[Tick]struct{}

	observers []*observer
	batch     int
	pending   *Change
}

// New returns an empty collection. Protected ticks can be modified in place
// but never removed.
func New[T any](protected ...Tick) *EventData[T] {
	d := &EventData[T]{}
	if len(protected) > 0 {
		d.protected = make(map[Tick]struct{}, len(protected))
		for _, t := range protected {
			d.protected[t] = struct{}{}
		}
	}
	return d
}

// search is the single binary search every lookup goes through. It returns
// the index of the first key >= tick and whether that key equals tick.
func (d *EventData[T]) search(tick Tick) (int, bool) {
	i := sort.Search(len(d.ticks), func(i int) bool {
		return d.ticks[i] >= tick
	})
	return i, i < len(d.ticks) && d.ticks[i] == tick
}

// upper returns the index of the first key > tick.
func (d *EventData[T]) upper(tick Tick) int {
	i, found := d.search(tick)
	if found {
		i++
	}
	return i
}

func (d *EventData[T]) Len() int {
	return len(d.ticks)
}

// At returns the i-th entry in tick order.
func (d *EventData[T]) At(i int) (Tick, T) {
	return d.ticks[i], d.values[i]
}

func (d *EventData[T]) Get(tick Tick) (T, bool) {
	i, found := d.search(tick)
	if !found {
		var zero T
		return zero, false
	}
	return d.values[i], true
}

func (d *EventData[T]) Contains(tick Tick) bool {
	_, found := d.search(tick)
	return found
}

func (d *EventData[T]) IsProtected(tick Tick) bool {
	_, ok := d.protected[tick]
	return ok
}

// First returns the smallest key, or NoTick when empty.
func (d *EventData[T]) First() Tick {
	if len(d.ticks) == 0 {
		return NoTick
	}
	return d.ticks[0]
}

// Last returns the largest key, or NoTick when empty.
func (d *EventData[T]) Last() Tick {
	if len(d.ticks) == 0 {
		return NoTick
	}
	return d.ticks[len(d.ticks)-1]
}

// Ticks returns a copy of every key in order.
func (d *EventData[T]) Ticks() []Tick {
	return slices.Clone(d.ticks)
}

// Each calls fn for every entry in order until fn returns false.
func (d *EventData[T]) Each(fn func(Tick, T) bool) {
	for i := range d.ticks {
		if !fn(d.ticks[i], d.values[i]) {
			return
		}
	}
}

// Add inserts value at tick, replacing any entry already there. Negative
// ticks are clamped to zero. The tick actually written is returned.
func (d *EventData[T]) Add(tick Tick, value T) Tick {
	if tick < 0 {
		tick = 0
	}
	i, found := d.search(tick)
	if found {
		d.values[i] = value
	} else {
		d.ticks = slices.Insert(d.ticks, i, tick)
		d.values = slices.Insert(d.values, i, value)
	}
	d.notify(Change{Start: tick, End: tick})
	return tick
}

// Set replaces the payload of an existing entry. It is the only way to change
// a protected entry.
func (d *EventData[T]) Set(tick Tick, value T) bool {
	i, found := d.search(tick)
	if !found {
		return false
	}
	d.values[i] = value
	d.notify(Change{Start: tick, End: tick})
	return true
}

// Remove deletes the entry at tick. Protected and missing ticks report false.
func (d *EventData[T]) Remove(tick Tick) bool {
	if d.IsProtected(tick) {
		return false
	}
	i, found := d.search(tick)
	if !found {
		return false
	}
	d.ticks = slices.Delete(d.ticks, i, i+1)
	d.values = slices.Delete(d.values, i, i+1)
	d.notify(Change{Start: tick, End: tick, Removed: true})
	return true
}

// PreviousTick returns the closest key before tick, or at tick when inclusive.
func (d *EventData[T]) PreviousTick(tick Tick, inclusive bool) Tick {
	i, found := d.search(tick)
	if found && inclusive {
		return tick
	}
	if i == 0 {
		return NoTick
	}
	return d.ticks[i-1]
}

// NextTick returns the closest key after tick, or at tick when inclusive.
func (d *EventData[T]) NextTick(tick Tick, inclusive bool) Tick {
	i, found := d.search(tick)
	if found && !inclusive {
		i++
	}
	if i >= len(d.ticks) {
		return NoTick
	}
	return d.ticks[i]
}

// Extent returns the last tick covered by the entry at tick. Payloads without
// a duration cover only their own tick. Missing entries return NoTick.
func (d *EventData[T]) Extent(tick Tick) Tick {
	v, ok := d.Get(tick)
	if !ok {
		return NoTick
	}
	if e, ok := any(v).(Extender); ok {
		if end := e.EndTick(tick); end > tick {
			return end
		}
	}
	return tick
}

// TicksInRange returns every key in [start, end].
func (d *EventData[T]) TicksInRange(start, end Tick) []Tick {
	if end < start {
		return nil
	}
	lo, _ := d.search(start)
	hi := d.upper(end)
	return slices.Clone(d.ticks[lo:hi])
}

// RelevantTicksInRange returns the keys in [start, end] plus the nearest key
// before start when its extent reaches into the range.
func (d *EventData[T]) RelevantTicksInRange(start, end Tick) []Tick {
	if end < start {
		return nil
	}
	in := d.TicksInRange(start, end)
	prev := d.PreviousTick(start, false)
	if prev != NoTick && d.Extent(prev) >= start {
		in = slices.Insert(in, 0, prev)
	}
	return in
}

// PopTicksInRange removes every unprotected entry in [start, end] and returns
// them as a new collection.
func (d *EventData[T]) PopTicksInRange(start, end Tick) *EventData[T] {
	popped := New[T]()
	if end < start {
		return popped
	}
	lo, _ := d.search(start)
	hi := d.upper(end)
	if lo == hi {
		return popped
	}

	ticks := make([]Tick, 0, len(d.ticks)-(hi-lo))
	values := make([]T, 0, len(d.values)-(hi-lo))
	ticks = append(ticks, d.ticks[:lo]...)
	values = append(values, d.values[:lo]...)
	for i := lo; i < hi; i++ {
		if d.IsProtected(d.ticks[i]) {
			ticks = append(ticks, d.ticks[i])
			values = append(values, d.values[i])
			continue
		}
		popped.ticks = append(popped.ticks, d.ticks[i])
		popped.values = append(popped.values, d.values[i])
	}
	ticks = append(ticks, d.ticks[hi:]...)
	values = append(values, d.values[hi:]...)
	d.ticks, d.values = ticks, values

	if popped.Len() > 0 {
		d.notify(Change{Start: start, End: end, Removed: true})
	}
	return popped
}

// Cascade walks the entries from the first key >= from, handing out pointers
// to the stored payloads so derived fields can be rewritten in place. It does
// not notify observers. The walk stops when fn returns false.
func (d *EventData[T]) Cascade(from Tick, fn func(tick Tick, value *T) bool) {
	i, _ := d.search(from)
	for ; i < len(d.ticks); i++ {
		if !fn(d.ticks[i], &d.values[i]) {
			return
		}
	}
}

// Batch runs fn and delivers the mutations it makes as a single merged
// change once fn returns. Batches nest.
func (d *EventData[T]) Batch(fn func()) {
	d.batch++
	defer func() {
		d.batch--
		if d.batch == 0 && d.pending != nil {
			c := *d.pending
			d.pending = nil
			d.emit(c)
		}
	}()
	fn()
}

// Subscribe registers fn for every change and returns a function that
// removes the subscription.
func (d *EventData[T]) Subscribe(fn func(Change)) func() {
	o := &observer{fn: fn}
	d.observers = append(d.observers, o)
	return func() {
		for i, other := range d.observers {
			if other == o {
				d.observers = slices.Delete(d.observers, i, i+1)
				return
			}
		}
	}
}

func (d *EventData[T]) notify(c Change) {
	if d.batch > 0 {
		if d.pending == nil {
			d.pending = &c
		} else {
			merged := d.pending.merge(c)
			d.pending = &merged
		}
		return
	}
	d.emit(c)
}

func (d *EventData[T]) emit(c Change) {
	if len(d.observers) == 0 {
		return
	}
	for _, o := range slices.Clone(d.observers) {
		o.fn(c)
	}
}

// Clear removes every unprotected entry.
func (d *EventData[T]) Clear() {
	if len(d.ticks) == 0 {
		return
	}
	d.PopTicksInRange(0, d.Last())
}

// Load replaces the contents with m. Negative keys are clamped to zero, the
// later of two colliding keys in sort order wins.
func (d *EventData[T]) Load(m map[Tick]T) {
	keys := maps.Keys(m)
	slices.Sort(keys)

	var end Tick
	if len(d.ticks) > 0 {
		end = d.Last()
	}

	d.ticks = d.ticks[:0]
	d.values = d.values[:0]
	for _, k := range keys {
		t := k
		if t < 0 {
			t = 0
		}
		if n := len(d.ticks); n > 0 && d.ticks[n-1] == t {
			d.values[n-1] = m[k]
			continue
		}
		d.ticks = append(d.ticks, t)
		d.values = append(d.values, m[k])
	}
	if last := d.Last(); last > end {
		end = last
	}
	d.notify(Change{Start: 0, End: end, Removed: true})
}

// Export returns the contents as a plain map.
func (d *EventData[T]) Export() map[Tick]T {
	m := make(map[Tick]T, len(d.ticks))
	for i, t := range d.ticks {
		m[t] = d.values[i]
	}
	return m
}

// Clone copies the entries and protected ticks. Observers are not copied.
func (d *EventData[T]) Clone() *EventData[T] {
	c := &EventData[T]{
		ticks:  slices.Clone(d.ticks),
		values: slices.Clone(d.values),
	}
	if d.protected != nil {
		c.protected = maps.Clone(d.protected)
	}
	return c
}

// Shifted returns an unprotected copy with every key moved by offset. Keys
// that would become negative are dropped.
func (d *EventData[T]) Shifted(offset Tick) *EventData[T] {
	c := New[T]()
	for i, t := range d.ticks {
		if t+offset < 0 {
			continue
		}
		c.ticks = append(c.ticks, t+offset)
		c.values = append(c.values, d.values[i])
	}
	return c
}
