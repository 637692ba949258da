package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnknownFormat = errors.New("unknown audio format")

// Open decodes the audio file at path. The returned stream owns the file.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	var decode func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".wav":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	default:
		return nil, beep.Format{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, err
	}
	stream, format, err := decode(f)
	if nil != err {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %s: %w", path, err)
	}
	return stream, format, nil
}

// SilentFormat is used when a chart has no audio.
var SilentFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Silence returns a seekable stream of seconds of silence.
func Silence(format beep.Format, seconds float64) beep.StreamSeeker {
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(format.SampleRate.N(time.Duration(seconds * float64(time.Second)))))
	return buf.Streamer(0, buf.Len())
}
