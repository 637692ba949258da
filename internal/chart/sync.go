package chart

import "git.lost.host/meutraa/fretedit/internal/events"

// TempoEvent is a tempo change. Seconds is not independent data: it is the
// cached timestamp derived from every earlier tempo event and is rewritten by
// the tempo map whenever an earlier event changes. Anchor pins Seconds.
type TempoEvent struct {
	BPM     float64 `json:"bpm"`
	Seconds float64 `json:"seconds"`
	Anchor  bool    `json:"anchor,omitempty"`
}

type TimeSignatureEvent struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"` // A power of two, 4 = quarter notes
}

// Valid reports whether the signature can be used for grid math.
func (ts TimeSignatureEvent) Valid() bool {
	d := ts.Denominator
	return ts.Numerator > 0 && d > 0 && d&(d-1) == 0
}

// MeasureLength is the length of one measure at the given resolution.
func (ts TimeSignatureEvent) MeasureLength(resolution events.Tick) events.Tick {
	return resolution * 4 * events.Tick(ts.Numerator) / events.Tick(ts.Denominator)
}

// BeatLength is the length of one beat at the given resolution.
func (ts TimeSignatureEvent) BeatLength(resolution events.Tick) events.Tick {
	return resolution * 4 / events.Tick(ts.Denominator)
}

var CommonTime = TimeSignatureEvent{Numerator: 4, Denominator: 4}
