package editor

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/lane"
)

// flagEdit records a flag change of the selected notes as before and after
// images of every fret at the selected ticks.
type flagEdit struct {
	lane  *lane.Lane
	ticks []Tick
	apply func()

	before, after [chart.LaneCount]map[Tick]chart.NoteEvent
	applied       bool
}

func newFlagEdit(l *lane.Lane, apply func()) *flagEdit {
	return &flagEdit{lane: l, ticks: l.SelectedTicks(), apply: apply}
}

func (a *flagEdit) capture() (out [chart.LaneCount]map[Tick]chart.NoteEvent) {
	for f, notes := range a.lane.Notes {
		out[f] = map[Tick]chart.NoteEvent{}
		for _, t := range a.ticks {
			if n, ok := notes.Get(t); ok {
				out[f][t] = n
			}
		}
	}
	return out
}

func (a *flagEdit) write(images [chart.LaneCount]map[Tick]chart.NoteEvent) {
	for f, notes := range a.lane.Notes {
		image := images[f]
		notes.Batch(func() {
			for t, n := range image {
				notes.Set(t, n)
			}
		})
	}
}

func (a *flagEdit) Invoke() bool {
	if a.applied {
		a.write(a.after)
		return true
	}
	a.before = a.capture()
	a.apply()
	a.after = a.capture()
	a.applied = true
	return differs(a.before, a.after)
}

func (a *flagEdit) Revoke() bool {
	if !a.applied {
		return false
	}
	a.write(a.before)
	return true
}

func differs(x, y [chart.LaneCount]map[Tick]chart.NoteEvent) bool {
	for f := range x {
		if len(x[f]) != len(y[f]) {
			return true
		}
		for t, n := range x[f] {
			if m, ok := y[f][t]; !ok || m != n {
				return true
			}
		}
	}
	return false
}
