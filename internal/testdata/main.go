package testdata

import (
	_ "embed"
	"math/rand"
	"strings"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/song"
)

//go:embed song.chart
var Chart string

var ExpertGuitar = chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Expert}

func GetSong() (*song.Song, error) {
	p := parser.DefaultParser{}
	return p.ParseReader(strings.NewReader(Chart))
}

// Generate fills the expert guitar track with n random notes at positions
// snapped to a sixteenth grid.
func Generate(seed int64, n int) *song.Song {
	r := rand.New(rand.NewSource(seed))
	s := song.New(192)
	t := s.Track(ExpertGuitar)
	step := s.Resolution() / 4
	for i := 0; i < n; i++ {
		tick := events.Tick(r.Intn(n*2)) * step
		sustain := events.Tick(0)
		if r.Intn(4) == 0 {
			sustain = events.Tick(r.Intn(4)+1) * step
		}
		t.AddNote(chart.Fret(r.Intn(chart.LaneCount)), tick, chart.NewNote(sustain))
	}
	return s
}
