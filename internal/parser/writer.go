package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sort"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/song"
)

type chartLine struct {
	tick  Tick
	order int
	text  string
}

// Write encodes s in the .chart format. A pinned flag equal to the natural
// one is written as a plain note and reads back as automatic. Stems are not
// written.
func Write(w io.Writer, s *song.Song) error {
	b := bufio.NewWriter(w)
	m := s.Metadata

	fmt.Fprintln(b, "[Song]")
	fmt.Fprintln(b, "{")
	fmt.Fprintf(b, "  Name = %q\n", m.Name)
	fmt.Fprintf(b, "  Artist = %q\n", m.Artist)
	fmt.Fprintf(b, "  Charter = %q\n", m.Charter)
	fmt.Fprintf(b, "  Album = %q\n", m.Album)
	fmt.Fprintf(b, "  Year = \", %s\"\n", m.Year)
	fmt.Fprintf(b, "  Genre = %q\n", m.Genre)
	fmt.Fprintf(b, "  Offset = %v\n", m.Offset)
	fmt.Fprintf(b, "  Resolution = %d\n", s.Resolution())
	fmt.Fprintf(b, "  PreviewStart = %v\n", m.PreviewStart)
	if m.MusicStream != "" {
		fmt.Fprintf(b, "  MusicStream = %q\n", m.MusicStream)
	}
	fmt.Fprintln(b, "}")

	var sync []chartLine
	s.Tempo.TimeSignatures.Each(func(t Tick, ts chart.TimeSignatureEvent) bool {
		text := fmt.Sprintf("TS %d", ts.Numerator)
		if ts.Denominator != 4 {
			text += fmt.Sprintf(" %d", bits.TrailingZeros(uint(ts.Denominator)))
		}
		sync = append(sync, chartLine{t, 0, text})
		return true
	})
	s.Tempo.Tempo.Each(func(t Tick, ev chart.TempoEvent) bool {
		if ev.Anchor {
			sync = append(sync, chartLine{t, 1, fmt.Sprintf("A %d", int64(math.Round(ev.Seconds*1e6)))})
		}
		sync = append(sync, chartLine{t, 2, fmt.Sprintf("B %d", int64(math.Round(ev.BPM*1000)))})
		return true
	})
	writeSection(b, "SyncTrack", sync)

	var evs []chartLine
	s.Sections.Each(func(t Tick, l chart.Label) bool {
		evs = append(evs, chartLine{t, 0, fmt.Sprintf("E \"section %s\"", l.Text)})
		return true
	})
	writeSection(b, "Events", evs)

	for _, k := range s.Keys() {
		t := s.Tracks[k]
		if t.Empty() {
			continue
		}
		var lines []chartLine
		for f, notes := range t.Notes {
			fret := chart.Fret(f)
			code := 7
			if fret != chart.Open {
				code = f
			}
			notes.Each(func(tick Tick, n chart.NoteEvent) bool {
				lines = append(lines, chartLine{tick, 1, fmt.Sprintf("N %d %d", code, n.Sustain)})
				return true
			})
		}
		t.Unique().Each(func(tick Tick, _ uint8) bool {
			notes := t.NotesAt(tick)
			n := notes[0].Note
			switch {
			case n.Flag == chart.Tap:
				lines = append(lines, chartLine{tick, 2, fmt.Sprintf("N %d 0", chartTap)})
			case !n.Default && n.Flag != t.NaturalFlag(tick):
				lines = append(lines, chartLine{tick, 2, fmt.Sprintf("N %d 0", chartForced)})
			}
			return true
		})
		t.Starpower.Each(func(tick Tick, sp chart.StarpowerEvent) bool {
			lines = append(lines, chartLine{tick, 0, fmt.Sprintf("S %d %d", chartStarpower, sp.Sustain)})
			return true
		})
		t.Solos.Each(func(tick Tick, solo chart.SoloEvent) bool {
			lines = append(lines, chartLine{tick, 3, "E solo"})
			lines = append(lines, chartLine{solo.EndTick(tick), 4, "E soloend"})
			return true
		})
		writeSection(b, chart.SectionName(k), lines)
	}
	return b.Flush()
}

func writeSection(w io.Writer, name string, lines []chartLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].tick != lines[j].tick {
			return lines[i].tick < lines[j].tick
		}
		return lines[i].order < lines[j].order
	})
	fmt.Fprintf(w, "[%s]\n{\n", name)
	for _, l := range lines {
		fmt.Fprintf(w, "  %d = %s\n", l.tick, l.text)
	}
	fmt.Fprintln(w, "}")
}
