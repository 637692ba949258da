package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/song"
)

// DefaultParser reads the sectioned .chart text format.
type DefaultParser struct{}

var ErrMalformed = errors.New("malformed chart line")

// chartFrets maps the fret number of an N line to a lane.
var chartFrets = map[int64]chart.Fret{
	0: chart.Green,
	1: chart.Red,
	2: chart.Yellow,
	3: chart.Blue,
	4: chart.Orange,
	7: chart.Open,
}

const (
	chartForced    = 5
	chartTap       = 6
	chartStarpower = 2
)

func (p *DefaultParser) Parse(path string) (*song.Song, error) {
	return parseFile(p, path)
}

func (p *DefaultParser) ParseReader(r io.Reader) (*song.Song, error) {
	c := newRawChart()
	scanner := bufio.NewScanner(r)
	section := ""
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		switch {
		case line == "", line == "{", line == "}":
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			section = line[1 : len(line)-1]
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("line %d: %w", n, ErrMalformed)
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		var err error
		switch section {
		case "Song":
			err = c.songLine(key, value)
		case "SyncTrack":
			err = c.syncLine(key, value)
		case "Events":
			err = c.eventLine(key, value)
		default:
			k, ok := chart.SectionMap[section]
			if !ok {
				continue
			}
			err = c.noteLine(k, key, value)
		}
		if nil != err {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); nil != err {
		return nil, err
	}

	for tick, ev := range c.tempo {
		if ev.BPM <= 0 {
			return nil, fmt.Errorf("anchor without tempo at %d: %w", tick, ErrMalformed)
		}
	}
	for k, t := range c.tracks {
		for tick, solo := range t.solos {
			if solo.End < tick {
				log.Println("unterminated solo in", k, "at", tick)
				delete(t.solos, tick)
			}
		}
	}
	return c.build()
}

func unquote(value string) string {
	value = strings.Trim(value, "\"")
	return strings.TrimPrefix(value, ", ")
}

func (c *rawChart) songLine(key, value string) error {
	var err error
	switch key {
	case "Name":
		c.meta.Name = unquote(value)
	case "Artist":
		c.meta.Artist = unquote(value)
	case "Charter":
		c.meta.Charter = unquote(value)
	case "Album":
		c.meta.Album = unquote(value)
	case "Year":
		c.meta.Year = unquote(value)
	case "Genre":
		c.meta.Genre = unquote(value)
	case "MusicStream":
		c.meta.MusicStream = unquote(value)
	case "Offset":
		c.meta.Offset, err = strconv.ParseFloat(value, 64)
	case "PreviewStart":
		c.meta.PreviewStart, err = strconv.ParseFloat(value, 64)
	case "Resolution":
		var res int64
		res, err = strconv.ParseInt(value, 10, 32)
		if nil != err {
			return err
		}
		if res <= 0 {
			return fmt.Errorf("resolution %q: %w", value, ErrMalformed)
		}
		c.meta.Resolution = Tick(res)
	default:
		if strings.HasSuffix(key, "Stream") {
			c.meta.Stems = append(c.meta.Stems, unquote(value))
		}
	}
	return err
}

func parseTick(key string) (Tick, error) {
	t, err := strconv.ParseInt(key, 10, 32)
	if nil != err {
		return 0, err
	}
	if t < 0 {
		return 0, fmt.Errorf("negative tick %d: %w", t, ErrMalformed)
	}
	return Tick(t), nil
}

func fields(value string, min int) ([]int64, error) {
	parts := strings.Fields(value)
	if len(parts) < min+1 {
		return nil, ErrMalformed
	}
	out := make([]int64, 0, len(parts)-1)
	for _, f := range parts[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if nil != err {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *rawChart) syncLine(key, value string) error {
	tick, err := parseTick(key)
	if nil != err {
		return err
	}
	kind := strings.Fields(value)
	if len(kind) == 0 {
		return ErrMalformed
	}
	switch kind[0] {
	case "B":
		v, err := fields(value, 1)
		if nil != err {
			return err
		}
		if v[0] <= 0 {
			return fmt.Errorf("tempo %d: %w", v[0], ErrMalformed)
		}
		ev := c.tempo[tick]
		ev.BPM = float64(v[0]) / 1000
		c.tempo[tick] = ev
	case "A":
		v, err := fields(value, 1)
		if nil != err {
			return err
		}
		ev := c.tempo[tick]
		ev.Anchor = tick != 0
		ev.Seconds = float64(v[0]) / 1e6
		c.tempo[tick] = ev
	case "TS":
		v, err := fields(value, 1)
		if nil != err {
			return err
		}
		ts := chart.TimeSignatureEvent{Numerator: int(v[0]), Denominator: 4}
		if len(v) > 1 {
			if v[1] < 0 || v[1] > 6 {
				return fmt.Errorf("time signature denominator 2^%d: %w", v[1], ErrMalformed)
			}
			ts.Denominator = 1 << v[1]
		}
		if !ts.Valid() {
			return fmt.Errorf("time signature %d/%d: %w", ts.Numerator, ts.Denominator, ErrMalformed)
		}
		c.sigs[tick] = ts
	}
	return nil
}

func (c *rawChart) eventLine(key, value string) error {
	tick, err := parseTick(key)
	if nil != err {
		return err
	}
	if !strings.HasPrefix(value, "E ") {
		return nil
	}
	text := unquote(strings.TrimSpace(value[2:]))
	if name := strings.TrimPrefix(text, "section "); name != text {
		c.sections[tick] = chart.Label{Text: name}
	}
	return nil
}

// sustainOf drops lengths that are negative or overflow a tick.
func sustainOf(v int64) Tick {
	if v > 0 && v < math.MaxInt32 {
		return Tick(v)
	}
	return 0
}

func (c *rawChart) noteLine(k chart.TrackKey, key, value string) error {
	tick, err := parseTick(key)
	if nil != err {
		return err
	}
	t := c.track(k)
	kind := strings.Fields(value)
	if len(kind) == 0 {
		return ErrMalformed
	}
	switch kind[0] {
	case "N":
		v, err := fields(value, 2)
		if nil != err {
			return err
		}
		sustain := sustainOf(v[1])
		switch v[0] {
		case chartForced:
			t.pin(tick, pinFlip)
		case chartTap:
			t.pin(tick, pinTap)
		default:
			if f, ok := chartFrets[v[0]]; ok {
				t.notes[f][tick] = chart.NewNote(sustain)
			}
		}
	case "S":
		v, err := fields(value, 2)
		if nil != err {
			return err
		}
		if v[0] == chartStarpower {
			t.starpower[tick] = chart.StarpowerEvent{Sustain: sustainOf(v[1])}
		}
	case "E":
		switch strings.TrimSpace(value[1:]) {
		case "solo":
			t.solos[tick] = chart.SoloEvent{End: -1}
		case "soloend":
			start := Tick(-1)
			for s, solo := range t.solos {
				if solo.End < s && s <= tick && s > start {
					start = s
				}
			}
			if start >= 0 {
				t.solos[start] = chart.SoloEvent{End: tick}
			}
		}
	}
	return nil
}
