package parser_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/lane"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type Tick = events.Tick

var hardGuitar = chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Hard}

func TestParseFixture(t *testing.T) {
	s, err := testdata.GetSong()
	require.NoError(t, err)

	assert.Equal(t, "Fixture", s.Metadata.Name)
	assert.Equal(t, "2022", s.Metadata.Year)
	assert.Equal(t, 0.25, s.Metadata.Offset)
	assert.Equal(t, 12.5, s.Metadata.PreviewStart)
	assert.Equal(t, "song.ogg", s.Metadata.MusicStream)
	assert.Equal(t, []string{"guitar.ogg"}, s.Metadata.Stems)
	assert.Equal(t, Tick(192), s.Resolution())

	assert.Equal(t, 120.0, s.Tempo.BPMAt(0))
	assert.InDelta(t, 160.0, s.Tempo.BPMAt(768), 1e-9)
	assert.InDelta(t, 3.5, s.Tempo.TickToSeconds(1536), 1e-9)
	ev, _ := s.Tempo.Tempo.Get(1536)
	assert.True(t, ev.Anchor)
	at, ts := s.Tempo.TimeSignatureAt(2000)
	assert.Equal(t, Tick(1536), at)
	assert.Equal(t, chart.TimeSignatureEvent{Numerator: 3, Denominator: 8}, ts)

	assert.Equal(t, map[Tick]chart.Label{0: {Text: "Intro"}, 768: {Text: "Verse 1"}}, s.Sections.Export())
	assert.Equal(t, []chart.TrackKey{hardGuitar, testdata.ExpertGuitar}, s.Keys())

	tr := s.Track(testdata.ExpertGuitar)
	assert.Equal(t, lane.Counts{Notes: 8, Chords: 1, Sustains: 2, HOPOs: 3, Taps: 1}, tr.Counts())

	n, _ := tr.Notes[chart.Red].Get(96)
	assert.Equal(t, chart.NoteEvent{Flag: chart.HOPO}, n)
	n, _ = tr.Notes[chart.Yellow].Get(144)
	assert.Equal(t, chart.NoteEvent{Flag: chart.HOPO, Default: true}, n)
	n, _ = tr.Notes[chart.Blue].Get(384)
	assert.Equal(t, chart.Tap, n.Flag)
	n, _ = tr.Notes[chart.Open].Get(432)
	assert.Equal(t, chart.HOPO, n.Flag)

	assert.Equal(t, map[Tick]chart.StarpowerEvent{0: {Sustain: 768}}, tr.Starpower.Export())
	assert.Equal(t, map[Tick]chart.SoloEvent{400: {End: 800}}, tr.Solos.Export())
	assert.Equal(t, Tick(1728), s.Length())
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := testdata.GetSong()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, parser.Write(&buf, s))

	p := parser.DefaultParser{}
	c, err := p.ParseReader(&buf)
	require.NoError(t, err)

	want, got := s.Snapshot(), c.Snapshot()
	want.Metadata.Stems = nil
	assert.Equal(t, want, got)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"resolution":       "[Song]\n{\n  Resolution = 0\n}\n",
		"tempo":            "[SyncTrack]\n{\n  0 = B -5\n}\n",
		"denominator":      "[SyncTrack]\n{\n  0 = TS 4 9\n}\n",
		"no equals":        "[Events]\n{\n  garbage\n}\n",
		"negative tick":    "[ExpertSingle]\n{\n  -5 = N 0 0\n}\n",
		"short note":       "[ExpertSingle]\n{\n  5 = N 0\n}\n",
		"anchor alone":     "[SyncTrack]\n{\n  0 = B 120000\n  768 = A 100\n}\n",
		"missing numerals": "[SyncTrack]\n{\n  0 = TS\n}\n",
	}
	p := parser.DefaultParser{}
	for name, data := range tests {
		_, err := p.ParseReader(strings.NewReader(data))
		assert.ErrorIs(t, err, parser.ErrMalformed, name)
	}

	_, err := p.ParseReader(strings.NewReader("[ExpertSingle]\n{\n  x = N 0 0\n}\n"))
	assert.Error(t, err)
}

func TestOutOfRangeSustainsAreDropped(t *testing.T) {
	data := "[ExpertSingle]\n{\n  0 = N 0 -20\n  0 = S 2 -96\n  10 = N 1 4294967296\n  200 = S 2 4294967296\n  400 = S 2 96\n}\n"
	p := parser.DefaultParser{}
	s, err := p.ParseReader(strings.NewReader(data))
	require.NoError(t, err)
	tr := s.Track(testdata.ExpertGuitar)
	assert.Equal(t, map[Tick]chart.StarpowerEvent{0: {}, 200: {}, 400: {Sustain: 96}}, tr.Starpower.Export())
	n, ok := tr.Notes[chart.Green].Get(0)
	require.True(t, ok)
	assert.Equal(t, Tick(0), n.Sustain)
	n, ok = tr.Notes[chart.Red].Get(10)
	require.True(t, ok)
	assert.Equal(t, Tick(0), n.Sustain)
}

func TestUnterminatedSoloIsDropped(t *testing.T) {
	data := "[ExpertSingle]\n{\n  0 = N 0 0\n  10 = E solo\n  20 = E soloend\n  30 = E solo\n}\n"
	p := parser.DefaultParser{}
	s, err := p.ParseReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, map[Tick]chart.SoloEvent{10: {End: 20}}, s.Track(testdata.ExpertGuitar).Solos.Export())
}

func TestForPath(t *testing.T) {
	p, err := parser.ForPath("a/b/song.chart")
	require.NoError(t, err)
	assert.IsType(t, &parser.DefaultParser{}, p)

	p, err = parser.ForPath("notes.MID")
	require.NoError(t, err)
	assert.IsType(t, &parser.MidiParser{}, p)

	_, err = parser.ForPath("notes.txt")
	assert.ErrorIs(t, err, parser.ErrUnknownFormat)

	path := filepath.Join(t.TempDir(), "song.chart")
	require.NoError(t, os.WriteFile(path, []byte(testdata.Chart), 0o644))
	s, err := parser.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "Fixture", s.Metadata.Name)

	_, err = parser.Parse(filepath.Join(t.TempDir(), "missing.chart"))
	assert.Error(t, err)
}

func midiFixture(t *testing.T) []byte {
	t.Helper()
	mf := smf.NewSMF1()
	mf.TimeFormat = smf.MetricTicks(480)

	var sync smf.Track
	sync.Add(0, smf.MetaMeter(4, 4))
	sync.Add(0, smf.MetaTempo(120))
	sync.Add(1920, smf.MetaTempo(140))
	sync.Close(0)
	mf.Add(sync)

	var evs smf.Track
	evs.Add(0, smf.MetaTrackSequenceName("EVENTS"))
	evs.Add(0, smf.MetaText("[section Intro]"))
	evs.Add(1920, smf.MetaText("[prc_verse_1]"))
	evs.Close(0)
	mf.Add(evs)

	var gtr smf.Track
	gtr.Add(0, smf.MetaTrackSequenceName("PART GUITAR"))
	gtr.Add(0, midi.NoteOn(0, 96, 100))
	gtr.Add(0, midi.NoteOn(0, chart.MidiStarpowerKey, 100))
	gtr.Add(0, midi.NoteOn(0, 84, 100))
	gtr.Add(60, midi.NoteOff(0, 96))
	gtr.Add(0, midi.NoteOff(0, 84))
	gtr.Add(180, midi.NoteOn(0, 97, 100))
	gtr.Add(0, midi.NoteOn(0, 101, 100))
	gtr.Add(60, midi.NoteOff(0, 101))
	gtr.Add(420, midi.NoteOff(0, 97))
	gtr.Add(240, midi.NoteOff(0, chart.MidiStarpowerKey))
	gtr.Add(0, midi.NoteOn(0, chart.MidiSoloKey, 100))
	gtr.Add(0, midi.NoteOn(0, 98, 100))
	gtr.Add(0, midi.NoteOn(0, 104, 100))
	gtr.Add(40, midi.NoteOff(0, 104))
	gtr.Add(20, midi.NoteOff(0, 98))
	gtr.Add(900, midi.NoteOff(0, chart.MidiSoloKey))
	gtr.Close(0)
	mf.Add(gtr)

	var buf bytes.Buffer
	_, err := mf.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestMidiParser(t *testing.T) {
	p := parser.MidiParser{}
	s, err := p.ParseReader(bytes.NewReader(midiFixture(t)))
	require.NoError(t, err)

	assert.Equal(t, Tick(480), s.Resolution())
	assert.InDelta(t, 120.0, s.Tempo.BPMAt(0), 1e-3)
	assert.InDelta(t, 140.0, s.Tempo.BPMAt(1920), 1e-3)
	assert.Equal(t, map[Tick]chart.Label{0: {Text: "Intro"}, 1920: {Text: "verse 1"}}, s.Sections.Export())
	assert.Equal(t, []chart.TrackKey{hardGuitar, testdata.ExpertGuitar}, s.Keys())

	tr := s.Track(testdata.ExpertGuitar)
	n, ok := tr.Notes[chart.Green].Get(0)
	require.True(t, ok)
	assert.Equal(t, chart.NewNote(0), n)

	n, ok = tr.Notes[chart.Red].Get(240)
	require.True(t, ok)
	assert.Equal(t, chart.NoteEvent{Sustain: 480, Flag: chart.HOPO}, n)

	n, ok = tr.Notes[chart.Yellow].Get(960)
	require.True(t, ok)
	assert.Equal(t, chart.NoteEvent{Flag: chart.Tap}, n)

	assert.Equal(t, map[Tick]chart.StarpowerEvent{0: {Sustain: 960}}, tr.Starpower.Export())
	assert.Equal(t, map[Tick]chart.SoloEvent{960: {End: 1920}}, tr.Solos.Export())

	hard := s.Track(hardGuitar)
	assert.Equal(t, []Tick{0}, hard.Notes[chart.Green].Ticks())
	assert.Equal(t, 1, hard.Starpower.Len())
}

func TestMidiRejectsGarbage(t *testing.T) {
	p := parser.MidiParser{}
	_, err := p.ParseReader(strings.NewReader("not a midi file"))
	assert.Error(t, err)
}
