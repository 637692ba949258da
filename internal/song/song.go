// Package song ties the tempo map, global events and every track of a chart
// together. A Song is created when a chart is loaded and closed when it is
// unloaded; everything that edits or draws the chart reaches it through here.
package song

import (
	"errors"
	"fmt"
	"sort"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/lane"
	"git.lost.host/meutraa/fretedit/internal/tempo"
)

type Tick = events.Tick

type Metadata struct {
	Name    string `json:"name" yaml:"name"`
	Artist  string `json:"artist,omitempty" yaml:"artist"`
	Charter string `json:"charter,omitempty" yaml:"charter"`
	Album   string `json:"album,omitempty" yaml:"album"`
	Year    string `json:"year,omitempty" yaml:"year"`
	Genre   string `json:"genre,omitempty" yaml:"genre"`
	// Offset is the delay in seconds between the audio start and tick 0.
	Offset       float64     `json:"offset,omitempty" yaml:"offset"`
	Resolution   Tick        `json:"resolution" yaml:"resolution"`
	PreviewStart float64     `json:"preview_start,omitempty" yaml:"preview_start"`
	MusicStream  string      `json:"music_stream,omitempty" yaml:"music_stream"`
	Stems        []string    `json:"stems,omitempty" yaml:"stems"`
	HopoCutoff   events.Tick `json:"hopo_cutoff,omitempty" yaml:"hopo_cutoff"`
}

type Song struct {
	Metadata  Metadata
	Tempo     *tempo.Map
	Sections  *events.EventData[chart.Label]
	Bookmarks *events.EventData[chart.Label]
	Tracks    map[chart.TrackKey]*lane.Track
}

// New returns an empty song at resolution with a single 120 BPM tempo.
func New(resolution Tick) *Song {
	if resolution <= 0 {
		resolution = tempo.DefaultResolution
	}
	return &Song{
		Metadata: Metadata{
			Resolution: resolution,
			HopoCutoff: lane.DefaultHopoCutoff(resolution),
		},
		Tempo:     tempo.New(resolution, tempo.DefaultBPM),
		Sections:  events.New[chart.Label](),
		Bookmarks: events.New[chart.Label](),
		Tracks:    map[chart.TrackKey]*lane.Track{},
	}
}

func (s *Song) Resolution() Tick {
	return s.Tempo.Resolution
}

// Track returns the track for k, creating an empty one when needed.
func (s *Song) Track(k chart.TrackKey) *lane.Track {
	if t, ok := s.Tracks[k]; ok {
		return t
	}
	t := lane.NewTrack(s.Metadata.HopoCutoff)
	s.Tracks[k] = t
	return t
}

func (s *Song) Lookup(k chart.TrackKey) (*lane.Track, bool) {
	t, ok := s.Tracks[k]
	return t, ok
}

// Keys lists the charted tracks by instrument, then difficulty.
func (s *Song) Keys() []chart.TrackKey {
	keys := make([]chart.TrackKey, 0, len(s.Tracks))
	for k := range s.Tracks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Instrument != keys[j].Instrument {
			return keys[i].Instrument < keys[j].Instrument
		}
		return keys[i].Difficulty < keys[j].Difficulty
	})
	return keys
}

// SetHopoCutoff changes the cutoff of every track and rederives their flags.
func (s *Song) SetHopoCutoff(cutoff Tick) {
	if cutoff <= 0 {
		cutoff = lane.DefaultHopoCutoff(s.Resolution())
	}
	s.Metadata.HopoCutoff = cutoff
	for _, t := range s.Tracks {
		t.HopoCutoff = cutoff
		t.Unique().Each(func(tick Tick, _ uint8) bool {
			t.RecomputeFlagsAround(tick)
			return true
		})
	}
}

// Length is the last tick covered by any event, sustains included.
func (s *Song) Length() Tick {
	var end Tick
	for _, t := range s.Tracks {
		if l := t.Length(); l > end {
			end = l
		}
	}
	for _, last := range []Tick{s.Tempo.Tempo.Last(), s.Sections.Last(), s.Bookmarks.Last()} {
		if last > end {
			end = last
		}
	}
	return end
}

// Seconds is the duration of the song up to its last event.
func (s *Song) Seconds() float64 {
	return s.Tempo.TickToSeconds(s.Length())
}

func (s *Song) Close() {
	s.Tempo.Close()
	for _, t := range s.Tracks {
		t.Close()
	}
}

// Kind names a song wide collection for bulk loading and export.
type Kind string

const (
	KindTempo         Kind = "tempo"
	KindTimeSignature Kind = "timesignature"
	KindSection       Kind = "section"
	KindBookmark      Kind = "bookmark"
)

var ErrKind = errors.New("unknown event kind")

// LoadEvents replaces the collection of kind with data, which must be a map
// from tick to the payload of that kind.
func (s *Song) LoadEvents(kind Kind, data any) error {
	switch kind {
	case KindTempo:
		return load(s.Tempo.Tempo, kind, data)
	case KindTimeSignature:
		return load(s.Tempo.TimeSignatures, kind, data)
	case KindSection:
		return load(s.Sections, kind, data)
	case KindBookmark:
		return load(s.Bookmarks, kind, data)
	}
	return fmt.Errorf("unable to load %q: %w", kind, ErrKind)
}

func load[T any](d *events.EventData[T], kind Kind, data any) error {
	m, ok := data.(map[Tick]T)
	if !ok {
		return fmt.Errorf("unable to load %q from %T", kind, data)
	}
	d.Load(m)
	return nil
}

// ExportEvents returns the collection of kind as a map from tick to payload.
func (s *Song) ExportEvents(kind Kind) (any, error) {
	switch kind {
	case KindTempo:
		return s.Tempo.Tempo.Export(), nil
	case KindTimeSignature:
		return s.Tempo.TimeSignatures.Export(), nil
	case KindSection:
		return s.Sections.Export(), nil
	case KindBookmark:
		return s.Bookmarks.Export(), nil
	}
	return nil, fmt.Errorf("unable to export %q: %w", kind, ErrKind)
}
