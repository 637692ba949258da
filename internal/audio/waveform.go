package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
)

// Waveform holds the peak amplitude of every bucket of a stem.
type Waveform struct {
	Path   string
	Bucket time.Duration
	Peaks  []float64
}

// Peak returns the loudest bucket between two audio times.
func (w *Waveform) Peak(from, to float64) float64 {
	if w.Bucket <= 0 || len(w.Peaks) == 0 {
		return 0
	}
	i := int(from / w.Bucket.Seconds())
	j := int(math.Ceil(to / w.Bucket.Seconds()))
	if i < 0 {
		i = 0
	}
	if j > len(w.Peaks) {
		j = len(w.Peaks)
	}
	peak := 0.0
	for ; i < j; i++ {
		if w.Peaks[i] > peak {
			peak = w.Peaks[i]
		}
	}
	return peak
}

// Peaks drains s and returns the maximum absolute sample of every run of
// size samples.
func Peaks(s beep.Streamer, size int) []float64 {
	if size <= 0 {
		size = 1
	}
	var peaks []float64
	buf := make([][2]float64, 512)
	peak, n := 0.0, 0
	for {
		read, ok := s.Stream(buf)
		for _, frame := range buf[:read] {
			for _, v := range frame {
				if v = math.Abs(v); v > peak {
					peak = v
				}
			}
			n++
			if n == size {
				peaks = append(peaks, peak)
				peak, n = 0, 0
			}
		}
		if !ok {
			break
		}
	}
	if n > 0 {
		peaks = append(peaks, peak)
	}
	return peaks
}

// Waveforms decodes every stem in parallel and computes its peaks.
func Waveforms(paths []string, bucket time.Duration) ([]*Waveform, error) {
	if bucket <= 0 {
		bucket = 10 * time.Millisecond
	}
	out := make([]*Waveform, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			stream, format, err := Open(path)
			if nil != err {
				errs[i] = err
				return
			}
			defer stream.Close()
			out[i] = &Waveform{
				Path:   path,
				Bucket: bucket,
				Peaks:  Peaks(stream, format.SampleRate.N(bucket)),
			}
			if err := stream.Err(); nil != err {
				errs[i] = fmt.Errorf("unable to read %s: %w", path, err)
			}
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if nil != err {
			return nil, err
		}
	}
	return out, nil
}
