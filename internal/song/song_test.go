package song

import (
	"testing"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expertGuitar = chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Expert}

func sample() *Song {
	s := New(192)
	s.Metadata.Name = "Sample"
	s.Tempo.SetBPM(768, 150)
	s.Tempo.TimeSignatures.Add(768, chart.TimeSignatureEvent{Numerator: 3, Denominator: 4})
	s.Sections.Add(0, chart.Label{Text: "intro"})

	t := s.Track(expertGuitar)
	t.AddNote(chart.Green, 0, chart.NewNote(0))
	t.AddNote(chart.Red, 48, chart.NewNote(0))
	t.AddNote(chart.Yellow, 384, chart.NewNote(192))
	t.AddNote(chart.Blue, 384, chart.NewNote(192))
	t.Starpower.Add(0, chart.StarpowerEvent{Sustain: 400})
	return s
}

func TestNewSong(t *testing.T) {
	s := New(0)
	assert.Equal(t, Tick(192), s.Resolution())
	assert.Equal(t, Tick(65), s.Metadata.HopoCutoff)
	assert.True(t, s.Tempo.Tempo.Contains(0))
	assert.Empty(t, s.Keys())

	tr := s.Track(expertGuitar)
	assert.Same(t, tr, s.Track(expertGuitar))
	_, ok := s.Lookup(chart.TrackKey{Instrument: chart.Bass})
	assert.False(t, ok)
}

func TestKeysAreOrdered(t *testing.T) {
	s := New(192)
	s.Track(chart.TrackKey{Instrument: chart.Bass, Difficulty: chart.Easy})
	s.Track(chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Hard})
	s.Track(chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Easy})
	assert.Equal(t, []chart.TrackKey{
		{Instrument: chart.Guitar, Difficulty: chart.Easy},
		{Instrument: chart.Guitar, Difficulty: chart.Hard},
		{Instrument: chart.Bass, Difficulty: chart.Easy},
	}, s.Keys())
}

func TestLoadAndExportEvents(t *testing.T) {
	s := New(192)
	require.NoError(t, s.LoadEvents(KindTempo, map[Tick]chart.TempoEvent{
		384: {BPM: 60},
	}))
	ev, ok := s.Tempo.Tempo.Get(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, ev.Seconds)
	assert.InDelta(t, 2.0, s.Tempo.TickToSeconds(384), 1e-9)

	require.NoError(t, s.LoadEvents(KindSection, map[Tick]chart.Label{10: {Text: "verse"}}))
	out, err := s.ExportEvents(KindSection)
	require.NoError(t, err)
	assert.Equal(t, map[Tick]chart.Label{10: {Text: "verse"}}, out)

	assert.Error(t, s.LoadEvents(KindTempo, map[Tick]chart.Label{}))
	assert.ErrorIs(t, s.LoadEvents("lyrics", nil), ErrKind)
	_, err = s.ExportEvents("lyrics")
	assert.ErrorIs(t, err, ErrKind)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := sample()
	data, err := s.MarshalJSON()
	require.NoError(t, err)

	c, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), c.Snapshot())
	assert.Equal(t, s.Hash(), c.Hash())

	tr, ok := c.Lookup(expertGuitar)
	require.True(t, ok)
	n, _ := tr.Notes[chart.Red].Get(48)
	assert.Equal(t, chart.HOPO, n.Flag)
	assert.True(t, tr.IsChord(384))
	assert.Equal(t, "Sample", c.Metadata.Name)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}

func TestHashFollowsContents(t *testing.T) {
	s := sample()
	h := s.Hash()
	assert.NotEmpty(t, h)

	s.Track(expertGuitar).AddNote(chart.Orange, 1000, chart.NewNote(0))
	assert.NotEqual(t, h, s.Hash())
	s.Track(expertGuitar).RemoveNote(chart.Orange, 1000)
	assert.Equal(t, h, s.Hash())

	// Empty tracks do not count.
	s.Track(chart.TrackKey{Instrument: chart.Keys})
	assert.Equal(t, h, s.Hash())
}

func TestRestoreDropsMissingTracks(t *testing.T) {
	s := sample()
	snap := s.Snapshot()

	bass := chart.TrackKey{Instrument: chart.Bass, Difficulty: chart.Expert}
	s.Track(bass).AddNote(chart.Green, 0, chart.NewNote(0))
	s.Sections.Add(500, chart.Label{Text: "solo"})

	s.Restore(snap)
	_, ok := s.Lookup(bass)
	assert.False(t, ok)
	assert.Equal(t, []Tick{0}, s.Sections.Ticks())
	assert.Equal(t, snap, s.Snapshot())
}

func TestLength(t *testing.T) {
	s := sample()
	assert.Equal(t, Tick(768), s.Length())
	s.Bookmarks.Add(2000, chart.Label{Text: "end"})
	assert.Equal(t, Tick(2000), s.Length())
	assert.InDelta(t, 768.0/192*0.5+(2000-768)/192.0*60/150, s.Seconds(), 1e-9)
}

func TestSetHopoCutoff(t *testing.T) {
	s := sample()
	tr := s.Track(expertGuitar)
	s.SetHopoCutoff(40)
	n, _ := tr.Notes[chart.Red].Get(48)
	assert.Equal(t, chart.Strum, n.Flag)

	s.SetHopoCutoff(0)
	assert.Equal(t, Tick(65), tr.HopoCutoff)
	n, _ = tr.Notes[chart.Red].Get(48)
	assert.Equal(t, chart.HOPO, n.Flag)
}
