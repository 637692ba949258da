package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/fretedit/internal/audio"
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/debug"
	"git.lost.host/meutraa/fretedit/internal/editor"
	"git.lost.host/meutraa/fretedit/internal/input"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/render"
	"git.lost.host/meutraa/fretedit/internal/store"
)

// Program is one open chart: the editing session and everything that feeds
// it or shows it.
type Program struct {
	Session   *editor.Session
	Transport *audio.Transport
	Mapper    *input.Mapper
	Highway   *render.Highway
	Autosaver *store.Autosaver

	// ChartPath is the file Save writes. Charts imported from another
	// format are saved next to it as .chart.
	ChartPath string
	// Delay is how much audio plays before the cursor when playback starts.
	Delay time.Duration

	frameCounter uint64
	status       string
	quit         bool
}

// SavePath is where a chart loaded from path is written back to.
func SavePath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".chart") {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".chart"
}

func (p *Program) setStatus(format string, args ...any) {
	p.status = fmt.Sprintf(format, args...)
}

// step is the cursor movement of one arrow key press.
func (p *Program) step() editor.Tick {
	e := p.Session
	if e.Snap <= 0 {
		return e.View.Zoom
	}
	step := e.Song.Resolution() * 4 / editor.Tick(e.Snap)
	if step <= 0 {
		step = 1
	}
	return step
}

// Handle applies one mapped key press.
func (p *Program) Handle(ev input.Event, err error) {
	if nil != err {
		p.setStatus("%v", err)
		debug.Log("input", "%v", err)
		return
	}
	e := p.Session
	switch ev.Kind {
	case input.Quit:
		p.quit = true
	case input.PlayPause:
		p.playPause()
	case input.Run:
		if e.Do(ev.Command) {
			debug.Log("edit", "%v", ev.Command)
		}
	case input.Cursor:
		fret := int(e.Fret) + ev.Frets
		if fret < 0 {
			fret = 0
		}
		if fret >= chart.LaneCount {
			fret = chart.LaneCount - 1
		}
		e.CursorTo(e.Cursor+editor.Tick(ev.Rows)*p.step(), chart.Fret(fret))
	case input.Click:
		e.ButtonDown(ev.Mods)
		e.ButtonUp()
	case input.Press:
		e.ButtonDown(ev.Mods)
	case input.Release:
		e.ButtonUp()
	case input.Tempo:
		if err := e.SetTempo(ev.BPM); nil != err {
			p.setStatus("%v", err)
		}
	case input.Section:
		e.AddSection(ev.Text)
	case input.Division:
		e.Snap = ev.Division
		e.CursorTo(e.Cursor, e.Fret)
	case input.Save:
		if err := p.Save(); nil != err {
			p.setStatus("%v", err)
		}
	}
}

// playPause starts playback from the cursor, or stops it and leaves the
// cursor where the audio stopped.
func (p *Program) playPause() {
	e, t := p.Session, p.Transport
	if t.IsPlaying() {
		t.Pause()
		e.CursorTo(t.CurrentTick(), e.Fret)
		return
	}
	from := e.Song.Tempo.TickToSeconds(e.Cursor) - p.Delay.Seconds()
	if err := t.Seek(e.Song.Tempo.SecondsToTick(from)); nil != err {
		p.setStatus("unable to seek: %v", err)
		return
	}
	t.Play()
}

// Save writes the chart file and records a snapshot.
func (p *Program) Save() error {
	path := SavePath(p.ChartPath)
	f, err := os.Create(path)
	if nil != err {
		return fmt.Errorf("unable to save chart: %w", err)
	}
	defer f.Close()
	if err := parser.Write(f, p.Session.Song); nil != err {
		return fmt.Errorf("unable to save chart: %w", err)
	}
	if p.Autosaver != nil {
		if _, err := p.Autosaver.Flush(); nil != err {
			return fmt.Errorf("unable to snapshot chart: %w", err)
		}
	}
	p.setStatus("saved %s", filepath.Base(path))
	return nil
}

// Update runs once per frame before Render and reports whether the program
// keeps running.
func (p *Program) Update() bool {
	p.frameCounter++
	e := p.Session
	if p.Transport.IsPlaying() {
		e.Follow(p.Transport.CurrentTick())
	} else {
		e.Follow(e.Cursor)
	}
	if p.Autosaver != nil && p.Autosaver.Poll() {
		p.setStatus("autosaved %s", p.Autosaver.Last())
	}
	debug.LogEvery(600, "frame", "frame %d at tick %d", p.frameCounter, e.View.Position())
	return !p.quit
}

// StatusLine summarises the session for the bottom of the screen.
func (p *Program) StatusLine() string {
	e := p.Session
	var b strings.Builder
	fmt.Fprintf(&b, " %s | %s | tick %d %.3fs | %g bpm | 1/%d | zoom %d",
		e.Song.Metadata.Name, e.Key, e.Cursor,
		e.Song.Tempo.TickToSeconds(e.Cursor), e.Song.Tempo.BPMAt(e.Cursor),
		e.Snap, e.View.Zoom)
	if label, text, ok := p.Mapper.Prompt(); ok {
		fmt.Fprintf(&b, " | %s: %s_", label, text)
	} else if p.status != "" {
		fmt.Fprintf(&b, " | %s", p.status)
	}
	return b.String()
}

func (p *Program) Render(f render.Filler, now time.Time) {
	p.Highway.Draw(f, p.Session, now, p.StatusLine())
}
