package chart

import "git.lost.host/meutraa/fretedit/internal/events"

// Flag is how a note is played.
type Flag uint8

const (
	Strum Flag = iota
	HOPO
	Tap
)

func (f Flag) String() string {
	switch f {
	case HOPO:
		return "hopo"
	case Tap:
		return "tap"
	}
	return "strum"
}

// Fret is the lane a note sits on.
type Fret uint8

const (
	Green Fret = iota
	Red
	Yellow
	Blue
	Orange
	Open

	LaneCount = 6
)

var fretNames = [LaneCount]string{"green", "red", "yellow", "blue", "orange", "open"}

func (f Fret) String() string {
	if int(f) < LaneCount {
		return fretNames[f]
	}
	return "unknown"
}

type NoteEvent struct {
	Sustain events.Tick `json:"sustain"` // Length held past the start tick
	Flag    Flag        `json:"flag"`
	// Default is true when Flag is derived from the spacing to the previous
	// note. A false value means the user pinned the flag.
	Default bool `json:"default"`
}

// NewNote returns a note whose flag is derived automatically.
func NewNote(sustain events.Tick) NoteEvent {
	return NoteEvent{Sustain: sustain, Flag: Strum, Default: true}
}

func (n NoteEvent) EndTick(at events.Tick) events.Tick {
	return at + n.Sustain
}

func (n NoteEvent) SustainLength() events.Tick {
	return n.Sustain
}

func (n NoteEvent) WithSustain(length events.Tick) NoteEvent {
	if length < 0 {
		length = 0
	}
	n.Sustain = length
	return n
}
