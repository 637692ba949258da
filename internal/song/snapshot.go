package song

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/lane"
)

// Snapshot is a plain copy of a song, suitable for JSON.
type Snapshot struct {
	Metadata       Metadata                          `json:"metadata"`
	Tempo          map[Tick]chart.TempoEvent         `json:"tempo"`
	TimeSignatures map[Tick]chart.TimeSignatureEvent `json:"time_signatures"`
	Sections       map[Tick]chart.Label              `json:"sections,omitempty"`
	Bookmarks      map[Tick]chart.Label              `json:"bookmarks,omitempty"`
	Tracks         []TrackSnapshot                   `json:"tracks"`
}

type TrackSnapshot struct {
	Instrument chart.Instrument                          `json:"instrument"`
	Difficulty chart.Difficulty                          `json:"difficulty"`
	Notes      [chart.LaneCount]map[Tick]chart.NoteEvent `json:"notes"`
	Starpower  map[Tick]chart.StarpowerEvent             `json:"starpower,omitempty"`
	Solos      map[Tick]chart.SoloEvent                  `json:"solos,omitempty"`
}

func (t TrackSnapshot) Key() chart.TrackKey {
	return chart.TrackKey{Instrument: t.Instrument, Difficulty: t.Difficulty}
}

// Snapshot copies the song. Empty tracks are left out.
func (s *Song) Snapshot() *Snapshot {
	snap := &Snapshot{
		Metadata:       s.Metadata,
		Tempo:          s.Tempo.Tempo.Export(),
		TimeSignatures: s.Tempo.TimeSignatures.Export(),
		Sections:       s.Sections.Export(),
		Bookmarks:      s.Bookmarks.Export(),
	}
	snap.Metadata.Resolution = s.Resolution()
	for _, k := range s.Keys() {
		t := s.Tracks[k]
		if t.Empty() {
			continue
		}
		ts := TrackSnapshot{
			Instrument: k.Instrument,
			Difficulty: k.Difficulty,
			Starpower:  t.Starpower.Export(),
			Solos:      t.Solos.Export(),
		}
		for i, notes := range t.Notes {
			ts.Notes[i] = notes.Export()
		}
		snap.Tracks = append(snap.Tracks, ts)
	}
	return snap
}

// FromSnapshot builds a new song holding the contents of snap.
func FromSnapshot(snap *Snapshot) *Song {
	s := New(snap.Metadata.Resolution)
	s.Restore(snap)
	return s
}

// Restore replaces the contents of the song with snap. The resolution of the
// song is kept: a snapshot at another resolution must go through
// FromSnapshot.
func (s *Song) Restore(snap *Snapshot) {
	res := s.Resolution()
	s.Metadata = snap.Metadata
	s.Metadata.Resolution = res
	if s.Metadata.HopoCutoff <= 0 {
		s.Metadata.HopoCutoff = lane.DefaultHopoCutoff(res)
	}

	s.Tempo.Tempo.Load(snap.Tempo)
	s.Tempo.TimeSignatures.Load(snap.TimeSignatures)
	s.Sections.Load(snap.Sections)
	s.Bookmarks.Load(snap.Bookmarks)

	seen := map[chart.TrackKey]bool{}
	for _, ts := range snap.Tracks {
		t := s.Track(ts.Key())
		t.HopoCutoff = s.Metadata.HopoCutoff
		t.ClearSelection()
		for i, notes := range t.Notes {
			notes.Load(ts.Notes[i])
		}
		t.Starpower.Load(ts.Starpower)
		t.Solos.Load(ts.Solos)
		seen[ts.Key()] = true
	}
	for k, t := range s.Tracks {
		if !seen[k] {
			t.Close()
			delete(s.Tracks, k)
		}
	}
}

// MarshalJSON encodes the song as its snapshot.
func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Decode parses a JSON snapshot into a new song.
func Decode(data []byte) (*Song, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); nil != err {
		return nil, fmt.Errorf("unable to unmarshal song: %w", err)
	}
	return FromSnapshot(&snap), nil
}

// Hash identifies the chart contents. Two songs with the same events and
// metadata hash the same.
func (s *Song) Hash() string {
	data, err := json.Marshal(s.Snapshot())
	if nil != err {
		return ""
	}
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
