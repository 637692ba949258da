package parser

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/song"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MidiParser reads standard midi files laid out with PART tracks.
type MidiParser struct{}

var ErrTimeFormat = errors.New("midi file does not use metric ticks")

const (
	midiForceHOPO  = 5 // added to the difficulty base key
	midiForceStrum = 6
	midiTapKey     = 104
)

type midiNote struct {
	key        uint8
	start, end Tick
}

func (p *MidiParser) Parse(path string) (*song.Song, error) {
	return parseFile(p, path)
}

func (p *MidiParser) ParseReader(r io.Reader) (s *song.Song, err error) {
	// smf panics on some truncated files
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("unable to read midi: %v", rec)
		}
	}()

	mf, err := smf.ReadFrom(r)
	if nil != err {
		return nil, err
	}
	ticks, ok := mf.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, ErrTimeFormat
	}

	c := newRawChart()
	c.meta.Resolution = Tick(ticks)
	for _, track := range mf.Tracks {
		c.midiTrack(track)
	}
	return c.build()
}

func (c *rawChart) midiTrack(track smf.Track) {
	var (
		abs   Tick
		name  string
		notes []midiNote
		open  = map[uint8]Tick{}
	)
	for _, ev := range track {
		abs += Tick(ev.Delta)
		msg := ev.Message

		var bpm float64
		var num, denom, cpt, dsqpq uint8
		var ch, key, vel uint8
		var text string
		switch {
		case msg.GetMetaTempo(&bpm):
			if bpm > 0 {
				c.tempo[abs] = chart.TempoEvent{BPM: bpm}
			}
		case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
			ts := chart.TimeSignatureEvent{Numerator: int(num), Denominator: int(denom)}
			if ts.Valid() {
				c.sigs[abs] = ts
			}
		case msg.GetMetaTrackName(&text):
			name = strings.TrimSpace(text)
		case msg.GetMetaText(&text):
			if name != "EVENTS" {
				continue
			}
			text = strings.Trim(strings.TrimSpace(text), "[]")
			if label := strings.TrimPrefix(text, "section "); label != text {
				c.sections[abs] = chart.Label{Text: label}
			} else if label := strings.TrimPrefix(text, "prc_"); label != text {
				c.sections[abs] = chart.Label{Text: strings.ReplaceAll(label, "_", " ")}
			}
		case msg.GetNoteStart(&ch, &key, &vel):
			if _, ok := open[key]; !ok {
				open[key] = abs
			}
		case msg.GetNoteEnd(&ch, &key):
			if start, ok := open[key]; ok {
				notes = append(notes, midiNote{key: key, start: start, end: abs})
				delete(open, key)
			}
		}
	}

	inst, ok := chart.MidiTrackMap[name]
	if !ok {
		return
	}
	c.midiNotes(inst, notes)
}

func (c *rawChart) midiNotes(inst chart.Instrument, notes []midiNote) {
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].start < notes[j].start })
	cutoff := c.meta.Resolution / 4

	for _, n := range notes {
		for d, base := range chart.MidiBaseKey {
			if n.key < base || n.key > base+4 {
				continue
			}
			sustain := n.end - n.start
			if sustain < cutoff {
				sustain = 0
			}
			t := c.track(chart.TrackKey{Instrument: inst, Difficulty: d})
			f := chart.Fret(n.key - base)
			if _, taken := t.notes[f][n.start]; !taken {
				t.notes[f][n.start] = chart.NewNote(sustain)
			}
		}
	}

	for d, base := range chart.MidiBaseKey {
		t, ok := c.tracks[chart.TrackKey{Instrument: inst, Difficulty: d}]
		if !ok {
			continue
		}
		for _, n := range notes {
			switch n.key {
			case chart.MidiStarpowerKey:
				t.starpower[n.start] = chart.StarpowerEvent{Sustain: n.end - n.start}
			case chart.MidiSoloKey:
				t.solos[n.start] = chart.SoloEvent{End: n.end}
			case midiTapKey:
				t.pinRange(n.start, n.end, pinTap)
			case base + midiForceHOPO:
				t.pinRange(n.start, n.end, pinHOPO)
			case base + midiForceStrum:
				t.pinRange(n.start, n.end, pinStrum)
			}
		}
	}
}

// pinRange pins every note starting in [start, end).
func (t *rawTrack) pinRange(start, end Tick, p pin) {
	for _, notes := range t.notes {
		for tick := range notes {
			if tick >= start && (tick < end || tick == start) {
				t.pin(tick, p)
			}
		}
	}
}
