package chart

import "git.lost.host/meutraa/fretedit/internal/events"

type StarpowerEvent struct {
	Sustain events.Tick `json:"sustain"`
	Unison  bool        `json:"unison,omitempty"`
}

func (s StarpowerEvent) EndTick(at events.Tick) events.Tick {
	return at + s.Sustain
}

func (s StarpowerEvent) SustainLength() events.Tick {
	return s.Sustain
}

func (s StarpowerEvent) WithSustain(length events.Tick) StarpowerEvent {
	if length < 0 {
		length = 0
	}
	s.Sustain = length
	return s
}

// SoloEvent is keyed by its start tick and carries an explicit end.
type SoloEvent struct {
	End events.Tick `json:"end"`
}

func (s SoloEvent) EndTick(at events.Tick) events.Tick {
	if s.End < at {
		return at
	}
	return s.End
}

// Label is the payload of sections and bookmarks.
type Label struct {
	Text string `json:"text"`
}
