package lane

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
)

// Track is everything charted for one instrument and difficulty.
type Track struct {
	*Lane
	Starpower *events.EventData[chart.StarpowerEvent]
	Solos     *events.EventData[chart.SoloEvent]

	StarpowerSelection *events.Selection[chart.StarpowerEvent]
	SoloSelection      *events.Selection[chart.SoloEvent]
}

func NewTrack(hopoCutoff Tick) *Track {
	t := &Track{
		Lane:      New(hopoCutoff),
		Starpower: events.New[chart.StarpowerEvent](),
		Solos:     events.New[chart.SoloEvent](),
	}
	t.StarpowerSelection = events.NewSelection(t.Starpower)
	t.SoloSelection = events.NewSelection(t.Solos)
	return t
}

func (t *Track) Close() {
	t.Lane.Close()
	t.StarpowerSelection.Close()
	t.SoloSelection.Close()
}

// InStarpower reports whether tick lies inside a starpower phrase.
func (t *Track) InStarpower(tick Tick) bool {
	return covered(t.Starpower, tick)
}

// InSolo reports whether tick lies inside a solo section.
func (t *Track) InSolo(tick Tick) bool {
	return covered(t.Solos, tick)
}

func covered[T any](d *events.EventData[T], tick Tick) bool {
	at := d.PreviousTick(tick, true)
	return at != events.NoTick && d.Extent(at) >= tick
}

// ClearSelection drops the note, starpower and solo selections.
func (t *Track) ClearSelection() {
	t.Lane.ClearSelection()
	t.StarpowerSelection.Clear()
	t.SoloSelection.Clear()
}

// Empty reports whether nothing at all is charted.
func (t *Track) Empty() bool {
	return t.UniqueLen() == 0 && t.Starpower.Len() == 0 && t.Solos.Len() == 0
}

// Length is the last tick covered by a note, phrase or solo.
func (t *Track) Length() Tick {
	end := t.Lane.Length()
	for _, last := range []Tick{maxExtent(t.Starpower), maxExtent(t.Solos)} {
		if last > end {
			end = last
		}
	}
	return end
}
