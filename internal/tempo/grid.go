package tempo

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
)

type GridLine struct {
	Tick    events.Tick
	Measure bool // First beat of a measure
}

// GridLines returns the beat lines in [start, end]. Measures restart at
// every time signature change.
func (m *Map) GridLines(start, end events.Tick) []GridLine {
	if start < 0 {
		start = 0
	}
	if end < start {
		return nil
	}

	var lines []GridLine
	segStart, ts := m.TimeSignatureAt(start)
	for segStart != events.NoTick && segStart <= end {
		segEnd := m.TimeSignatures.NextTick(segStart, false)
		if !ts.Valid() {
			ts = chart.CommonTime
		}
		beat := ts.BeatLength(m.Resolution)
		measure := ts.MeasureLength(m.Resolution)
		if beat <= 0 || measure <= 0 {
			beat, measure = m.Resolution, m.Resolution*4
		}

		t := segStart
		if start > segStart {
			t = segStart + (start-segStart+beat-1)/beat*beat
		}
		for ; t <= end && (segEnd == events.NoTick || t < segEnd); t += beat {
			lines = append(lines, GridLine{Tick: t, Measure: (t-segStart)%measure == 0})
		}

		if segEnd == events.NoTick {
			break
		}
		segStart = segEnd
		ts, _ = m.TimeSignatures.Get(segStart)
	}
	return lines
}
