package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/song"
)

type Tick = events.Tick

type Parser interface {
	Parse(path string) (*song.Song, error)
	ParseReader(r io.Reader) (*song.Song, error)
}

var ErrUnknownFormat = errors.New("unknown chart format")

// ForPath picks a parser by file extension.
func ForPath(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chart":
		return &DefaultParser{}, nil
	case ".mid", ".midi":
		return &MidiParser{}, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Parse imports the chart at path with the parser matching its extension.
func Parse(path string) (*song.Song, error) {
	p, err := ForPath(path)
	if nil != err {
		return nil, err
	}
	return p.Parse(path)
}

func parseFile(p Parser, path string) (*song.Song, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, err
	}
	defer f.Close()
	s, err := p.ParseReader(f)
	if nil != err {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return s, nil
}

// pin is a flag override read from a chart file.
type pin uint8

const (
	pinNone pin = iota
	pinFlip     // invert the natural strum or hopo
	pinHOPO
	pinStrum
	pinTap
)

type rawTrack struct {
	notes     [chart.LaneCount]map[Tick]chart.NoteEvent
	pins      map[Tick]pin
	starpower map[Tick]chart.StarpowerEvent
	solos     map[Tick]chart.SoloEvent
}

func newRawTrack() *rawTrack {
	t := &rawTrack{
		pins:      map[Tick]pin{},
		starpower: map[Tick]chart.StarpowerEvent{},
		solos:     map[Tick]chart.SoloEvent{},
	}
	for i := range t.notes {
		t.notes[i] = map[Tick]chart.NoteEvent{}
	}
	return t
}

func (t *rawTrack) pin(tick Tick, p pin) {
	if t.pins[tick] == pinTap {
		return
	}
	t.pins[tick] = p
}

// rawChart collects everything read from a file before the song exists,
// since the resolution may only be known at the end.
type rawChart struct {
	meta     song.Metadata
	tempo    map[Tick]chart.TempoEvent
	sigs     map[Tick]chart.TimeSignatureEvent
	sections map[Tick]chart.Label
	tracks   map[chart.TrackKey]*rawTrack
}

func newRawChart() *rawChart {
	return &rawChart{
		tempo:    map[Tick]chart.TempoEvent{},
		sigs:     map[Tick]chart.TimeSignatureEvent{},
		sections: map[Tick]chart.Label{},
		tracks:   map[chart.TrackKey]*rawTrack{},
	}
}

func (c *rawChart) track(k chart.TrackKey) *rawTrack {
	t, ok := c.tracks[k]
	if !ok {
		t = newRawTrack()
		c.tracks[k] = t
	}
	return t
}

func (c *rawChart) build() (*song.Song, error) {
	s := song.New(c.meta.Resolution)
	meta := c.meta
	meta.Resolution = s.Resolution()
	if meta.HopoCutoff <= 0 {
		meta.HopoCutoff = s.Metadata.HopoCutoff
	}
	s.Metadata = meta

	if err := s.LoadEvents(song.KindTempo, c.tempo); nil != err {
		return nil, err
	}
	if err := s.LoadEvents(song.KindTimeSignature, c.sigs); nil != err {
		return nil, err
	}
	if err := s.LoadEvents(song.KindSection, c.sections); nil != err {
		return nil, err
	}

	for k, raw := range c.tracks {
		t := s.Track(k)
		for i, notes := range raw.notes {
			t.Notes[i].Load(notes)
		}
		t.Starpower.Load(raw.starpower)
		t.Solos.Load(raw.solos)

		ticks := make([]Tick, 0, len(raw.pins))
		for tick := range raw.pins {
			ticks = append(ticks, tick)
		}
		sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
		for _, tick := range ticks {
			switch raw.pins[tick] {
			case pinFlip:
				if t.NaturalFlag(tick) == chart.HOPO {
					t.PinFlag(tick, chart.Strum)
				} else {
					t.PinFlag(tick, chart.HOPO)
				}
			case pinHOPO:
				t.PinFlag(tick, chart.HOPO)
			case pinStrum:
				t.PinFlag(tick, chart.Strum)
			case pinTap:
				t.PinFlag(tick, chart.Tap)
			}
		}
		if t.Empty() {
			t.Close()
			delete(s.Tracks, k)
		}
	}
	return s, nil
}
