package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"git.lost.host/meutraa/fretedit/internal/editor"
	"github.com/eiannone/keyboard"
)

// Kind says what a key press asks for.
type Kind uint8

const (
	Ignore Kind = iota
	Quit
	PlayPause
	Run      // Event.Command
	Cursor   // Event.Rows and Event.Frets
	Click    // Press and release with Event.Mods
	Press    // Hold the button with Event.Mods
	Release  // Let go of a held button
	Tempo    // Event.BPM
	Section  // Event.Text
	Division // Event.Division
	Save
)

type Event struct {
	Kind     Kind
	Command  editor.Command
	Mods     editor.Modifiers
	Rows     int
	Frets    int
	BPM      float64
	Text     string
	Division int
}

type prompt uint8

const (
	noPrompt prompt = iota
	tempoPrompt
	sectionPrompt
)

var DefaultBindings = map[rune]editor.Command{
	'n': editor.AddNote,
	'x': editor.Delete,
	'y': editor.Copy,
	'd': editor.Cut,
	'p': editor.Paste,
	'u': editor.Undo,
	't': editor.ToggleTap,
	'f': editor.ToggleForced,
	'*': editor.AddStarpower,
	'a': editor.ToggleAnchor,
	'R': editor.RemoveTempo,
	'+': editor.ZoomIn,
	'-': editor.ZoomOut,
}

var specialBindings = map[keyboard.Key]editor.Command{
	keyboard.KeyCtrlR:  editor.Redo,
	keyboard.KeyCtrlA:  editor.SelectAll,
	keyboard.KeyPgup:   editor.ScrollUp,
	keyboard.KeyPgdn:   editor.ScrollDown,
	keyboard.KeyDelete: editor.Delete,
}

var divisions = map[rune]int{
	'0': 0,
	'1': 4,
	'2': 8,
	'3': 12,
	'4': 16,
	'6': 24,
	'8': 32,
	'9': 64,
}

// Mapper translates keys. It remembers whether a drag is held and the text
// typed into an open prompt, so it must only be used from one goroutine.
type Mapper struct {
	Bindings map[rune]editor.Command

	held   bool
	prompt prompt
	buffer []rune
}

func NewMapper() *Mapper {
	b := make(map[rune]editor.Command, len(DefaultBindings))
	for r, c := range DefaultBindings {
		b[r] = c
	}
	return &Mapper{Bindings: b}
}

var ErrBadBinding = errors.New("binding must be a single character")

// Bind maps key to the command called name, replacing any other key bound
// to that command.
func (m *Mapper) Bind(key, name string) error {
	if utf8.RuneCountInString(key) != 1 {
		return fmt.Errorf("%q: %w", key, ErrBadBinding)
	}
	c, err := editor.ParseCommand(name)
	if nil != err {
		return fmt.Errorf("unable to bind %q: %w", key, err)
	}
	for r, o := range m.Bindings {
		if o == c {
			delete(m.Bindings, r)
		}
	}
	r, _ := utf8.DecodeRuneInString(key)
	m.Bindings[r] = c
	return nil
}

// Prompt returns the label and text of the open prompt.
func (m *Mapper) Prompt() (string, string, bool) {
	switch m.prompt {
	case tempoPrompt:
		return "bpm", string(m.buffer), true
	case sectionPrompt:
		return "section", string(m.buffer), true
	}
	return "", "", false
}

// Holding reports whether a drag started from the keyboard is in progress.
func (m *Mapper) Holding() bool {
	return m.held
}

// Map returns the event for one key press. A rejected tempo is returned as
// an error and closes the prompt.
func (m *Mapper) Map(ev keyboard.KeyEvent) (Event, error) {
	if nil != ev.Err {
		return Event{}, fmt.Errorf("unable to read key: %w", ev.Err)
	}
	if ev.Key == keyboard.KeyCtrlC {
		return Event{Kind: Quit}, nil
	}
	if m.prompt != noPrompt {
		return m.typed(ev)
	}

	switch ev.Key {
	case keyboard.KeyArrowUp:
		return Event{Kind: Cursor, Rows: 1}, nil
	case keyboard.KeyArrowDown:
		return Event{Kind: Cursor, Rows: -1}, nil
	case keyboard.KeyArrowLeft:
		return Event{Kind: Cursor, Frets: -1}, nil
	case keyboard.KeyArrowRight:
		return Event{Kind: Cursor, Frets: 1}, nil
	case keyboard.KeyEnter:
		return Event{Kind: Click}, nil
	case keyboard.KeyTab:
		return Event{Kind: Click, Mods: editor.Modifiers{Shift: true}}, nil
	case keyboard.KeySpace:
		return Event{Kind: PlayPause}, nil
	case keyboard.KeyCtrlS:
		return Event{Kind: Save}, nil
	case keyboard.KeyEsc:
		if m.held {
			m.held = false
			return Event{Kind: Run, Command: editor.CancelGesture}, nil
		}
		return Event{Kind: Run, Command: editor.ClearSelection}, nil
	}
	if c, ok := specialBindings[ev.Key]; ok {
		return Event{Kind: Run, Command: c}, nil
	}

	switch ev.Rune {
	case 0:
		return Event{}, nil
	case 'q':
		return Event{Kind: Quit}, nil
	case 'g':
		return m.hold(editor.Modifiers{}), nil
	case 's':
		return m.hold(editor.Modifiers{Ctrl: true}), nil
	case '=':
		m.open(tempoPrompt)
		return Event{}, nil
	case '#':
		m.open(sectionPrompt)
		return Event{}, nil
	}
	if d, ok := divisions[ev.Rune]; ok {
		return Event{Kind: Division, Division: d}, nil
	}
	if c, ok := m.Bindings[ev.Rune]; ok {
		return Event{Kind: Run, Command: c}, nil
	}
	return Event{}, nil
}

// hold presses the button on the first call and releases it on the next.
func (m *Mapper) hold(mods editor.Modifiers) Event {
	m.held = !m.held
	if m.held {
		return Event{Kind: Press, Mods: mods}
	}
	return Event{Kind: Release}
}

func (m *Mapper) open(p prompt) {
	m.prompt = p
	m.buffer = m.buffer[:0]
}

func (m *Mapper) typed(ev keyboard.KeyEvent) (Event, error) {
	switch ev.Key {
	case keyboard.KeyEsc:
		m.prompt = noPrompt
		return Event{}, nil
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if n := len(m.buffer); n > 0 {
			m.buffer = m.buffer[:n-1]
		}
		return Event{}, nil
	case keyboard.KeySpace:
		m.buffer = append(m.buffer, ' ')
		return Event{}, nil
	case keyboard.KeyEnter:
		p, text := m.prompt, strings.TrimSpace(string(m.buffer))
		m.prompt = noPrompt
		if p == sectionPrompt {
			if text == "" {
				return Event{}, nil
			}
			return Event{Kind: Section, Text: text}, nil
		}
		bpm, err := ParseBPM(text)
		if nil != err {
			return Event{}, err
		}
		return Event{Kind: Tempo, BPM: bpm}, nil
	}
	if ev.Rune != 0 {
		m.buffer = append(m.buffer, ev.Rune)
	}
	return Event{}, nil
}
