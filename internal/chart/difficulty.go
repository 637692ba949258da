package chart

import (
	"fmt"
	"strings"
)

type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

var difficultyNames = [...]string{"Easy", "Medium", "Hard", "Expert"}

func (d Difficulty) String() string {
	if int(d) < len(difficultyNames) {
		return difficultyNames[d]
	}
	return "Unknown"
}

type Instrument uint8

const (
	Guitar Instrument = iota
	GuitarCoop
	Bass
	Rhythm
	Keys
)

var instrumentNames = [...]string{"Guitar", "GuitarCoop", "Bass", "Rhythm", "Keys"}

func (i Instrument) String() string {
	if int(i) < len(instrumentNames) {
		return instrumentNames[i]
	}
	return "Unknown"
}

// TrackKey identifies one playable track of a song.
type TrackKey struct {
	Instrument Instrument
	Difficulty Difficulty
}

func (k TrackKey) String() string {
	return fmt.Sprintf("%v%v", k.Difficulty, k.Instrument)
}

// SectionMap maps .chart section names to tracks, for example ExpertSingle.
var SectionMap = map[string]TrackKey{}

// MidiTrackMap maps midi track names to instruments.
var MidiTrackMap = map[string]Instrument{
	"PART GUITAR":      Guitar,
	"PART GUITAR COOP": GuitarCoop,
	"PART BASS":        Bass,
	"PART RHYTHM":      Rhythm,
	"PART KEYS":        Keys,
}

// MidiBaseKey is the midi key of the green fret per difficulty. Open notes
// are not encoded by key.
var MidiBaseKey = map[Difficulty]uint8{
	Easy:   60,
	Medium: 72,
	Hard:   84,
	Expert: 96,
}

const (
	MidiSoloKey      = 103
	MidiStarpowerKey = 116
)

var sectionSuffixes = map[Instrument]string{
	Guitar:     "Single",
	GuitarCoop: "DoubleGuitar",
	Bass:       "DoubleBass",
	Rhythm:     "DoubleRhythm",
	Keys:       "Keyboard",
}

// SectionName is the .chart section holding the notes of k.
func SectionName(k TrackKey) string {
	return k.Difficulty.String() + sectionSuffixes[k.Instrument]
}

func init() {
	for i := range sectionSuffixes {
		for d := Easy; d <= Expert; d++ {
			k := TrackKey{Instrument: i, Difficulty: d}
			SectionMap[SectionName(k)] = k
		}
	}
}

// ParseTrackKey matches instrument and difficulty names case insensitively,
// for example "guitar" and "expert".
func ParseTrackKey(instrument, difficulty string) (TrackKey, error) {
	var k TrackKey
	found := false
	for i, n := range instrumentNames {
		if strings.EqualFold(n, instrument) {
			k.Instrument = Instrument(i)
			found = true
		}
	}
	if !found {
		return k, fmt.Errorf("unknown instrument %q", instrument)
	}
	for d, n := range difficultyNames {
		if strings.EqualFold(n, difficulty) {
			k.Difficulty = Difficulty(d)
			return k, nil
		}
	}
	return k, fmt.Errorf("unknown difficulty %q", difficulty)
}
