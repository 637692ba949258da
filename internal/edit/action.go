// Package edit holds the undoable mutations of the chart.
//
// Every action records the state it replaces when it is first invoked, so
// Revoke restores exactly what was there before and Invoke can be replayed for
// redo. Multi-entry mutations run inside a single batch and observers of the
// edited collection see one change per invocation.
package edit

import "git.lost.host/meutraa/fretedit/internal/events"

type Tick = events.Tick

type Action interface {
	// Invoke applies the action and reports whether anything changed.
	Invoke() bool
	// Revoke restores the state from before the last Invoke.
	Revoke() bool
}

// capture copies the entries of d in [start, end].
func capture[T any](d *events.EventData[T], start, end Tick) *events.EventData[T] {
	out := events.New[T]()
	for _, t := range d.TicksInRange(start, end) {
		v, _ := d.Get(t)
		out.Add(t, v)
	}
	return out
}

// restore rewrites [start, end] of d to hold exactly the entries of pre.
// Protected entries survive the clear and are overwritten from pre.
func restore[T any](d *events.EventData[T], start, end Tick, pre *events.EventData[T]) {
	d.Batch(func() {
		d.PopTicksInRange(start, end)
		pre.Each(func(t Tick, v T) bool {
			d.Add(t, v)
			return true
		})
	})
}

// Create adds a single entry. It never overwrites: invoking it on an occupied
// tick fails and clears the selection.
type Create[T any] struct {
	Data      *events.EventData[T]
	Selection *events.Selection[T]
	Tick      Tick
	Value     T

	done bool
}

func NewCreate[T any](data *events.EventData[T], sel *events.Selection[T], tick Tick, value T) *Create[T] {
	if tick < 0 {
		tick = 0
	}
	return &Create[T]{Data: data, Selection: sel, Tick: tick, Value: value}
}

func (a *Create[T]) Invoke() bool {
	if a.Data.Contains(a.Tick) {
		if a.Selection != nil {
			a.Selection.Clear()
		}
		a.done = false
		return false
	}
	a.Data.Add(a.Tick, a.Value)
	a.done = true
	return true
}

func (a *Create[T]) Revoke() bool {
	if !a.done {
		return false
	}
	a.done = false
	if a.Selection != nil {
		a.Selection.Remove(a.Tick)
	}
	return a.Data.Remove(a.Tick)
}

// Delete removes every selected entry. Protected entries stay in place but
// the selection is always empty afterwards. A redo removes the same ticks as
// the first invocation.
type Delete[T any] struct {
	Selection *events.Selection[T]
	Removed   []Tick

	removed *events.EventData[T]
}

func NewDelete[T any](sel *events.Selection[T]) *Delete[T] {
	return &Delete[T]{Selection: sel}
}

func (a *Delete[T]) Invoke() bool {
	data := a.Selection.Parent()
	ticks := a.Removed
	if a.removed == nil {
		ticks = a.Selection.Ticks()
	}
	a.removed = events.New[T]()
	a.Removed = nil
	data.Batch(func() {
		for _, t := range ticks {
			v, ok := data.Get(t)
			if !ok || !data.Remove(t) {
				continue
			}
			a.removed.Add(t, v)
			a.Removed = append(a.Removed, t)
		}
	})
	a.Selection.Clear()
	return len(a.Removed) > 0
}

func (a *Delete[T]) Revoke() bool {
	if a.removed == nil || a.removed.Len() == 0 {
		return false
	}
	data := a.Selection.Parent()
	data.Batch(func() {
		a.removed.Each(func(t Tick, v T) bool {
			data.Add(t, v)
			a.Selection.Add(t)
			return true
		})
	})
	return true
}

// DeleteRange removes every unprotected entry in [Start, End].
type DeleteRange[T any] struct {
	Data       *events.EventData[T]
	Start, End Tick

	pre *events.EventData[T]
}

func NewDeleteRange[T any](data *events.EventData[T], start, end Tick) *DeleteRange[T] {
	if end < start {
		start, end = end, start
	}
	return &DeleteRange[T]{Data: data, Start: start, End: end}
}

func (a *DeleteRange[T]) Invoke() bool {
	a.pre = capture(a.Data, a.Start, a.End)
	return a.Data.PopTicksInRange(a.Start, a.End).Len() > 0
}

func (a *DeleteRange[T]) Revoke() bool {
	if a.pre == nil {
		return false
	}
	restore(a.Data, a.Start, a.End, a.pre)
	return true
}

// Span wraps an action whose effect reaches past its own entries, such as a
// tempo edit that restretches its neighbours. The entries in the range Bounds
// returns are captured before every Invoke and restored by Revoke.
type Span[T any] struct {
	Data   *events.EventData[T]
	Bounds func() (Tick, Tick)
	Action Action

	start, end Tick
	pre        *events.EventData[T]
}

func NewSpan[T any](data *events.EventData[T], bounds func() (Tick, Tick), a Action) *Span[T] {
	return &Span[T]{Data: data, Bounds: bounds, Action: a}
}

func (a *Span[T]) Invoke() bool {
	a.start, a.end = a.Bounds()
	a.pre = capture(a.Data, a.start, a.end)
	if !a.Action.Invoke() {
		a.pre = nil
		return false
	}
	return true
}

func (a *Span[T]) Revoke() bool {
	if a.pre == nil {
		return false
	}
	restore(a.Data, a.start, a.end, a.pre)
	a.pre = nil
	return true
}

// Group applies several actions as one, for edits spanning several
// collections. Revoke runs in reverse order and only touches the actions
// that changed something.
type Group struct {
	Actions []Action

	done []bool
}

func NewGroup(actions ...Action) *Group {
	return &Group{Actions: actions}
}

func (g *Group) Add(a Action) {
	g.Actions = append(g.Actions, a)
}

func (g *Group) Invoke() bool {
	g.done = make([]bool, len(g.Actions))
	changed := false
	for i, a := range g.Actions {
		g.done[i] = a.Invoke()
		changed = changed || g.done[i]
	}
	return changed
}

// Revoke undoes the members in reverse order. A group that was assembled from
// already applied actions and never invoked revokes all of them.
func (g *Group) Revoke() bool {
	changed := false
	for i := len(g.Actions) - 1; i >= 0; i-- {
		if g.done == nil || g.done[i] {
			changed = g.Actions[i].Revoke() || changed
		}
	}
	g.done = make([]bool, len(g.Actions))
	return changed
}

// Replace swaps the payload of an existing entry.
type Replace[T any] struct {
	Data  *events.EventData[T]
	Tick  Tick
	Value T

	pre T
	ok  bool
}

func NewReplace[T any](data *events.EventData[T], tick Tick, value T) *Replace[T] {
	return &Replace[T]{Data: data, Tick: tick, Value: value}
}

func (a *Replace[T]) Invoke() bool {
	a.pre, a.ok = a.Data.Get(a.Tick)
	if !a.ok {
		return false
	}
	return a.Data.Set(a.Tick, a.Value)
}

func (a *Replace[T]) Revoke() bool {
	if !a.ok {
		return false
	}
	a.ok = false
	return a.Data.Set(a.Tick, a.pre)
}
