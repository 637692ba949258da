// Package audio plays the song audio and maps its position onto the chart.
package audio

import (
	"fmt"
	"math"
	"time"

	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/tempo"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Locker guards the stream while the speaker is reading from it.
type Locker interface {
	Lock()
	Unlock()
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// SpeakerLock is the Locker to use once the stream is playing through the
// speaker.
var SpeakerLock Locker = speakerLock{}

// Transport is the play head of the editor. Tick positions go through the
// tempo map, and Offset seconds of audio play before tick 0.
type Transport struct {
	Tempo  *tempo.Map
	Offset float64

	format beep.Format
	stream beep.StreamSeeker
	ctrl   *beep.Ctrl
	lock   Locker
}

// NewTransport wraps stream paused at its start.
func NewTransport(stream beep.StreamSeeker, format beep.Format, m *tempo.Map, offset float64, lock Locker) *Transport {
	return &Transport{
		Tempo:  m,
		Offset: offset,
		format: format,
		stream: stream,
		ctrl:   &beep.Ctrl{Streamer: stream, Paused: true},
		lock:   lock,
	}
}

// Streamer is what should be handed to speaker.Play.
func (t *Transport) Streamer() beep.Streamer {
	return t.ctrl
}

func (t *Transport) Format() beep.Format {
	return t.format
}

// Start opens the speaker and starts feeding it. A rate other than 1 plays
// the audio faster or slower by running the speaker at a scaled sample rate.
// Playback stays paused until Play.
func (t *Transport) Start(rate float64) error {
	if rate <= 0 {
		rate = 1
	}
	sr := t.format.SampleRate
	out := beep.SampleRate(math.Round(float64(sr) * rate))
	if err := speaker.Init(out, sr.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	speaker.Play(t.ctrl)
	return nil
}

func (t *Transport) seconds(samples int) float64 {
	return t.format.SampleRate.D(samples).Seconds()
}

// CurrentSeconds is the chart time of the play head.
func (t *Transport) CurrentSeconds() float64 {
	t.lock.Lock()
	pos := t.stream.Position()
	t.lock.Unlock()
	return t.seconds(pos) - t.Offset
}

func (t *Transport) CurrentTick() events.Tick {
	return t.Tempo.SecondsToTick(t.CurrentSeconds())
}

func (t *Transport) IsPlaying() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return !t.ctrl.Paused
}

// SongLengthTicks is the tick at which the audio ends.
func (t *Transport) SongLengthTicks() events.Tick {
	return t.Tempo.SecondsToTick(t.seconds(t.stream.Len()) - t.Offset)
}

func (t *Transport) setPaused(paused bool) {
	t.lock.Lock()
	t.ctrl.Paused = paused
	t.lock.Unlock()
}

func (t *Transport) Play() {
	t.setPaused(false)
}

func (t *Transport) Pause() {
	t.setPaused(true)
}

// Toggle flips between playing and paused and reports whether it now plays.
func (t *Transport) Toggle() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.ctrl.Paused = !t.ctrl.Paused
	return !t.ctrl.Paused
}

// Seek moves the play head to tick, clamped to the audio.
func (t *Transport) Seek(tick events.Tick) error {
	seconds := t.Tempo.TickToSeconds(tick) + t.Offset
	sample := int(math.Round(seconds * float64(t.format.SampleRate)))
	if sample < 0 {
		sample = 0
	}
	if n := t.stream.Len(); sample > n {
		sample = n
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.stream.Seek(sample)
}
