package input

import (
	"errors"
	"testing"

	"git.lost.host/meutraa/fretedit/internal/editor"
	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(k keyboard.Key) keyboard.KeyEvent {
	return keyboard.KeyEvent{Key: k}
}

func char(r rune) keyboard.KeyEvent {
	return keyboard.KeyEvent{Rune: r}
}

func TestParseBPM(t *testing.T) {
	valid := map[string]float64{
		"120":       120,
		" 97.5 ":    97.5,
		"133.33333": 133.333,
		"1":         1,
		"1000":      1000,
	}
	for in, want := range valid {
		got, err := ParseBPM(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "0", "-120", "0.5", "1000.1", "NaN", "Inf", "12O"} {
		_, err := ParseBPM(in)
		assert.ErrorIs(t, err, ErrInvalidBPM, in)
	}
}

func TestMapKeys(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		in   keyboard.KeyEvent
		want Event
	}{
		{key(keyboard.KeyArrowUp), Event{Kind: Cursor, Rows: 1}},
		{key(keyboard.KeyArrowLeft), Event{Kind: Cursor, Frets: -1}},
		{key(keyboard.KeyEnter), Event{Kind: Click}},
		{key(keyboard.KeyTab), Event{Kind: Click, Mods: editor.Modifiers{Shift: true}}},
		{key(keyboard.KeySpace), Event{Kind: PlayPause}},
		{key(keyboard.KeyCtrlR), Event{Kind: Run, Command: editor.Redo}},
		{key(keyboard.KeyCtrlC), Event{Kind: Quit}},
		{key(keyboard.KeyEsc), Event{Kind: Run, Command: editor.ClearSelection}},
		{char('n'), Event{Kind: Run, Command: editor.AddNote}},
		{char('4'), Event{Kind: Division, Division: 16}},
		{char('q'), Event{Kind: Quit}},
		{char('Z'), Event{}},
	}
	for _, c := range cases {
		got, err := m.Map(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := m.Map(keyboard.KeyEvent{Err: errors.New("closed")})
	assert.Error(t, err)
}

func TestHold(t *testing.T) {
	m := NewMapper()
	ev, _ := m.Map(char('s'))
	assert.Equal(t, Event{Kind: Press, Mods: editor.Modifiers{Ctrl: true}}, ev)
	assert.True(t, m.Holding())
	ev, _ = m.Map(char('s'))
	assert.Equal(t, Release, ev.Kind)

	m.Map(char('g'))
	ev, _ = m.Map(key(keyboard.KeyEsc))
	assert.Equal(t, Event{Kind: Run, Command: editor.CancelGesture}, ev)
	assert.False(t, m.Holding())
}

func TestPrompts(t *testing.T) {
	m := NewMapper()
	typeText := func(s string) {
		for _, r := range s {
			ev, err := m.Map(char(r))
			require.NoError(t, err)
			require.Equal(t, Ignore, ev.Kind)
		}
	}

	m.Map(char('='))
	typeText("14x")
	m.Map(key(keyboard.KeyBackspace2))
	typeText("5.5")
	label, text, open := m.Prompt()
	assert.True(t, open)
	assert.Equal(t, "bpm", label)
	assert.Equal(t, "145.5", text)
	ev, err := m.Map(key(keyboard.KeyEnter))
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: Tempo, BPM: 145.5}, ev)
	_, _, open = m.Prompt()
	assert.False(t, open)

	m.Map(char('='))
	typeText("fast")
	_, err = m.Map(key(keyboard.KeyEnter))
	assert.ErrorIs(t, err, ErrInvalidBPM)

	m.Map(char('#'))
	typeText("Guitar")
	m.Map(key(keyboard.KeySpace))
	typeText("Solo")
	ev, err = m.Map(key(keyboard.KeyEnter))
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: Section, Text: "Guitar Solo"}, ev)

	m.Map(char('#'))
	typeText("nope")
	ev, _ = m.Map(key(keyboard.KeyEsc))
	assert.Equal(t, Ignore, ev.Kind)
	ev, _ = m.Map(char('n'))
	assert.Equal(t, Event{Kind: Run, Command: editor.AddNote}, ev)
}

func TestBind(t *testing.T) {
	m := NewMapper()
	require.NoError(t, m.Bind("k", "add-note"))
	ev, _ := m.Map(char('k'))
	assert.Equal(t, editor.AddNote, ev.Command)
	ev, _ = m.Map(char('n'))
	assert.Equal(t, Ignore, ev.Kind)
	assert.Equal(t, editor.AddNote, DefaultBindings['n'])

	assert.ErrorIs(t, m.Bind("kk", "add-note"), ErrBadBinding)
	assert.ErrorIs(t, m.Bind("k", "explode"), editor.ErrUnknownCommand)
}

func TestDrain(t *testing.T) {
	keys := make(chan keyboard.KeyEvent, 4)
	keys <- char('n')
	keys <- char('Z')
	keys <- key(keyboard.KeyArrowDown)

	var got []Event
	Drain(keys, NewMapper(), func(ev Event, err error) {
		require.NoError(t, err)
		got = append(got, ev)
	})
	assert.Equal(t, []Event{
		{Kind: Run, Command: editor.AddNote},
		{Kind: Cursor, Rows: -1},
	}, got)
	assert.Empty(t, keys)
}
