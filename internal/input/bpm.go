package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinBPM = 1.0
	MaxBPM = 1000.0
)

var ErrInvalidBPM = errors.New("invalid bpm")

// ParseBPM reads a tempo typed by the user. Charts store tempos in
// thousandths of a beat per minute, so the value is rounded to that.
func ParseBPM(s string) (float64, error) {
	s = strings.TrimSpace(s)
	bpm, err := strconv.ParseFloat(s, 64)
	if nil != err {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidBPM)
	}
	if math.IsNaN(bpm) || bpm < MinBPM || bpm > MaxBPM {
		return 0, fmt.Errorf("%q out of range [%v, %v]: %w", s, MinBPM, MaxBPM, ErrInvalidBPM)
	}
	return math.Round(bpm*1000) / 1000, nil
}
