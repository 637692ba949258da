package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/fretedit/internal/audio"
	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/config"
	"git.lost.host/meutraa/fretedit/internal/debug"
	"git.lost.host/meutraa/fretedit/internal/editor"
	"git.lost.host/meutraa/fretedit/internal/input"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/render"
	"git.lost.host/meutraa/fretedit/internal/song"
	"git.lost.host/meutraa/fretedit/internal/store"
	"git.lost.host/meutraa/fretedit/internal/theme"
	"git.lost.host/meutraa/fretedit/internal/viewport"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

// trackKey reads "instrument:difficulty". When the song has no such track
// the first charted one is used instead.
func trackKey(s *song.Song, name string) (chart.TrackKey, error) {
	instrument, difficulty, ok := strings.Cut(name, ":")
	if !ok {
		return chart.TrackKey{}, fmt.Errorf("track %q is not instrument:difficulty", name)
	}
	k, err := chart.ParseTrackKey(instrument, difficulty)
	if nil != err {
		return k, err
	}
	if _, ok := s.Lookup(k); !ok {
		if keys := s.Keys(); len(keys) > 0 {
			log.Printf("no %v track, editing %v\n", k, keys[0])
			return keys[0], nil
		}
	}
	return k, nil
}

// openAudio decodes the audio for the chart, or makes silence long enough for
// the whole chart when there is none.
func openAudio(path string, s *song.Song) (*audio.Transport, func(), error) {
	if path == "" {
		seconds := s.Seconds() + s.Metadata.Offset + 30
		stream := audio.Silence(audio.SilentFormat, seconds)
		return audio.NewTransport(stream, audio.SilentFormat, s.Tempo, s.Metadata.Offset, audio.SpeakerLock), func() {}, nil
	}
	stream, format, err := audio.Open(path)
	if nil != err {
		return nil, nil, err
	}
	t := audio.NewTransport(stream, format, s.Tempo, s.Metadata.Offset, audio.SpeakerLock)
	return t, func() { stream.Close() }, nil
}

func audioPath(flag, chartPath string, s *song.Song) string {
	if flag != "" {
		return flag
	}
	if s.Metadata.MusicStream == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(chartPath), s.Metadata.MusicStream)
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}
	if cfg.Debug {
		if err := debug.Enable(debug.DefaultPath()); nil != err {
			log.Println("unable to enable debug log", err)
		}
		defer debug.Disable()
	}

	s, err := parser.Parse(cfg.Chart)
	if nil != err {
		return err
	}
	defer s.Close()
	if cfg.HopoCutoff > 0 {
		s.SetHopoCutoff(editor.Tick(cfg.HopoCutoff))
	}
	key, err := trackKey(s, cfg.Track)
	if nil != err {
		return err
	}

	transport, closeAudio, err := openAudio(audioPath(cfg.Audio, cfg.Chart, s), s)
	if nil != err {
		return err
	}
	defer closeAudio()

	var st store.Store = &store.DefaultStore{}
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0755); nil != err {
		return fmt.Errorf("unable to create database directory: %w", err)
	}
	if err := st.Init(cfg.Database); nil != err {
		return err
	}
	defer st.Deinit()

	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	if rows < 4 {
		return errors.New("terminal is too small")
	}

	view := viewport.New(editor.Tick(cfg.Zoom), rows-1, (rows-1)/5)
	session := editor.New(s, key, view)
	defer session.Close()
	session.Snap = cfg.Snap

	source, err := filepath.Abs(cfg.Chart)
	if nil != err {
		source = cfg.Chart
	}
	autosaver := store.NewAutosaver(st, source, func() *song.Song { return s }, cfg.AutosaveDelay)
	session.Changed = autosaver.Touch

	mapper := input.NewMapper()
	for k, name := range cfg.Keys {
		if err := mapper.Bind(k, name); nil != err {
			return err
		}
	}

	spacing := cfg.Spacing
	laneWidth := chart.LaneCount * spacing
	p := &Program{
		Session:   session,
		Transport: transport,
		Mapper:    mapper,
		Highway:   render.NewHighway(theme.NewDefaultTheme(), (columns-laneWidth)/3, spacing, columns),
		Autosaver: autosaver,
		ChartPath: cfg.Chart,
		Delay:     cfg.Delay,
	}

	keys, closeKeys, err := input.Open(128)
	if nil != err {
		return err
	}
	defer closeKeys()

	if err := transport.Start(cfg.Rate); nil != err {
		return err
	}

	var r render.Renderer = render.NewDefaultRenderer(cfg.FramePeriod)
	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := r.Deinit(); nil != err {
			log.Println("unable to restore terminal", err)
		}
	}()

	r.RenderLoop(func(now time.Time, elapsed time.Duration) bool {
		input.Drain(keys, mapper, p.Handle)
		if !p.Update() {
			return false
		}
		p.Render(r, now)
		return true
	})

	if _, err := autosaver.Flush(); nil != err {
		log.Println("unable to save snapshot", err)
	}
	return nil
}
