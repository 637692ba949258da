package edit

import (
	"testing"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/lane"
	"git.lost.host/meutraa/fretedit/internal/tempo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notes(ticks map[Tick]Tick) (*events.EventData[chart.NoteEvent], *events.Selection[chart.NoteEvent]) {
	d := events.New[chart.NoteEvent]()
	for t, sustain := range ticks {
		d.Add(t, chart.NewNote(sustain))
	}
	return d, events.NewSelection(d)
}

func TestCreateOnOccupiedTick(t *testing.T) {
	d, sel := notes(map[Tick]Tick{100: 0})
	sel.Add(100)

	a := NewCreate(d, sel, 100, chart.NewNote(50))
	assert.False(t, a.Invoke())
	assert.True(t, sel.Empty())
	n, _ := d.Get(100)
	assert.Equal(t, Tick(0), n.Sustain)
	assert.False(t, a.Revoke())

	b := NewCreate(d, sel, 200, chart.NewNote(50))
	require.True(t, b.Invoke())
	assert.True(t, d.Contains(200))
	require.True(t, b.Revoke())
	assert.False(t, d.Contains(200))
}

func TestDeleteEmptiesSelection(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 0, 100: 10, 200: 0})
	sel.AddInRange(0, 100)

	a := NewDelete(sel)
	require.True(t, a.Invoke())
	assert.Equal(t, []Tick{0, 100}, a.Removed)
	assert.True(t, sel.Empty())
	assert.Equal(t, []Tick{200}, d.Ticks())

	require.True(t, a.Revoke())
	assert.Equal(t, []Tick{0, 100, 200}, d.Ticks())
	n, _ := d.Get(100)
	assert.Equal(t, Tick(10), n.Sustain)

	sel.Clear()
	require.True(t, a.Invoke())
	assert.Equal(t, []Tick{200}, d.Ticks())
}

func TestDeleteKeepsProtected(t *testing.T) {
	m := tempo.New(192, 120)
	m.SetBPM(192, 90)
	sel := events.NewSelection(m.Tempo)
	sel.AddInRange(0, 192)

	a := NewDelete(sel)
	require.True(t, a.Invoke())
	assert.Equal(t, []Tick{192}, a.Removed)
	assert.True(t, sel.Empty())
	assert.Equal(t, []Tick{0}, m.Tempo.Ticks())
}

func TestDeleteRange(t *testing.T) {
	d, _ := notes(map[Tick]Tick{0: 0, 100: 0, 200: 0, 300: 0})
	a := NewDeleteRange(d, 250, 100)
	require.True(t, a.Invoke())
	assert.Equal(t, []Tick{0, 300}, d.Ticks())
	require.True(t, a.Revoke())
	assert.Equal(t, []Tick{0, 100, 200, 300}, d.Ticks())

	assert.False(t, NewDeleteRange(d, 1000, 2000).Invoke())
}

func TestPasteTwiceIsIdempotent(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 5, 100: 0, 500: 0})
	clip := events.NewClipboard[chart.NoteEvent]()
	sel.AddInRange(0, 100)
	require.True(t, Copy(sel, clip))

	a := NewPaste(sel, clip, 480)
	require.True(t, a.Invoke())
	once := d.Export()
	assert.Equal(t, []Tick{0, 100, 480, 580}, d.Ticks())
	assert.Equal(t, []Tick{480, 580}, sel.Ticks())
	assert.Equal(t, []Tick{480, 580}, a.Placed)

	require.True(t, NewPaste(sel, clip, 480).Invoke())
	assert.Equal(t, once, d.Export())

	n, _ := d.Get(480)
	assert.Equal(t, Tick(5), n.Sustain)
}

func TestPasteNotifiesOnce(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 0, 10: 0, 20: 0})
	clip := events.NewClipboard[chart.NoteEvent]()
	sel.AddInRange(0, 20)
	Copy(sel, clip)

	var changes []events.Change
	d.Subscribe(func(c events.Change) { changes = append(changes, c) })
	NewPaste(sel, clip, 10).Invoke()
	require.Len(t, changes, 1)
	assert.Equal(t, events.Change{Start: 10, End: 30, Removed: true}, changes[0])
}

func TestPasteRevokeRestoresCoveredEntries(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 0, 50: 0, 120: 7})
	clip := events.NewClipboard[chart.NoteEvent]()
	sel.AddInRange(0, 50)
	Copy(sel, clip)

	a := NewPaste(sel, clip, 100)
	a.Invoke()
	assert.Equal(t, []Tick{0, 50, 100, 150}, d.Ticks())
	require.True(t, a.Revoke())
	assert.Equal(t, []Tick{0, 50, 120}, d.Ticks())
	n, _ := d.Get(120)
	assert.Equal(t, Tick(7), n.Sustain)
	assert.True(t, sel.Empty())

	assert.False(t, NewPaste(sel, events.NewClipboard[chart.NoteEvent](), 0).Invoke())
}

func TestPasteKeepsTempoAtZero(t *testing.T) {
	m := tempo.New(192, 120)
	m.SetBPM(192, 90)
	m.SetBPM(384, 60)
	sel := events.NewSelection(m.Tempo)
	clip := events.NewClipboard[chart.TempoEvent]()
	sel.AddInRange(192, 384)
	Copy(sel, clip)

	a := NewPaste(sel, clip, 0)
	require.True(t, a.Invoke())
	ev, ok := m.Tempo.Get(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, ev.Seconds)
	assert.Equal(t, 90.0, ev.BPM)
	assert.Equal(t, []Tick{0, 192, 384}, m.Tempo.Ticks())
	assert.InDelta(t, 192.0/192*60/90, m.TickToSeconds(192), 1e-9)

	require.True(t, a.Revoke())
	ev, _ = m.Tempo.Get(0)
	assert.Equal(t, 120.0, ev.BPM)
	assert.InDelta(t, 0.5, m.TickToSeconds(192), 1e-9)
}

func TestCut(t *testing.T) {
	d, sel := notes(map[Tick]Tick{40: 0, 80: 0, 120: 0})
	clip := events.NewClipboard[chart.NoteEvent]()
	sel.AddInRange(80, 120)

	a := NewCut(sel, clip)
	require.True(t, a.Invoke())
	assert.Equal(t, []Tick{40}, d.Ticks())
	assert.Equal(t, []Tick{0, 40}, clip.Data().Ticks())

	require.True(t, a.Revoke())
	assert.Equal(t, []Tick{40, 80, 120}, d.Ticks())

	sel.Clear()
	assert.False(t, NewCut(sel, clip).Invoke())
}

func TestMoveCancelRestores(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 1, 100: 2, 200: 3})
	before := d.Export()
	sel.Add(100)

	m := BeginMove(sel, 100)
	require.NotNil(t, m)
	assert.True(t, m.Step(150))
	assert.Equal(t, []Tick{0, 150, 200}, d.Ticks())
	assert.Equal(t, []Tick{150}, sel.Ticks())

	assert.True(t, m.Step(200))
	n, _ := d.Get(200)
	assert.Equal(t, Tick(2), n.Sustain)
	assert.Equal(t, []Tick{0, 200}, d.Ticks())

	assert.True(t, m.Step(250))
	n, _ = d.Get(200)
	assert.Equal(t, Tick(3), n.Sustain)
	assert.Equal(t, []Tick{250}, m.Ghosts())

	m.Step(200)
	m.Cancel()
	assert.Equal(t, before, d.Export())
	assert.Equal(t, []Tick{100}, sel.Ticks())
	assert.False(t, m.Step(300))
	assert.Nil(t, m.Complete())
}

func TestMoveCompleteUndoRedo(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 1, 100: 2, 200: 3})
	before := d.Export()
	sel.AddInRange(0, 100)
	h := NewHistory(0)

	m := BeginMove(sel, 0)
	assert.False(t, m.Step(0))
	m.Step(200)
	a := m.Complete()
	require.NotNil(t, a)
	h.Push(a)
	after := d.Export()
	assert.Equal(t, []Tick{200, 300}, d.Ticks())

	require.True(t, h.Undo())
	assert.Equal(t, before, d.Export())
	require.True(t, h.Redo())
	assert.Equal(t, after, d.Export())
}

func TestMoveStopsAtZero(t *testing.T) {
	d, sel := notes(map[Tick]Tick{0: 1, 100: 2})
	sel.Add(100)
	m := BeginMove(sel, 100)
	m.Step(-50)
	assert.Equal(t, []Tick{0}, d.Ticks())
	n, _ := d.Get(0)
	assert.Equal(t, Tick(2), n.Sustain)

	m.Cancel()
	assert.Equal(t, []Tick{0, 100}, d.Ticks())

	sel.Clear()
	assert.Nil(t, BeginMove(sel, 0))
}

func TestSustainDrag(t *testing.T) {
	d, _ := notes(map[Tick]Tick{0: 0, 100: 0, 120: 0})
	h := NewHistory(0)

	s := BeginSustain(d, []Tick{0, 100, 999})
	assert.Equal(t, []Tick{0, 100}, s.Ticks)
	assert.True(t, s.Step(150))
	n, _ := d.Get(0)
	assert.Equal(t, Tick(150), n.Sustain)
	n, _ = d.Get(100)
	assert.Equal(t, Tick(50), n.Sustain)

	s.Step(50)
	n, _ = d.Get(100)
	assert.Equal(t, Tick(0), n.Sustain)

	h.Push(s.Complete())
	require.True(t, h.Undo())
	n, _ = d.Get(0)
	assert.Equal(t, Tick(0), n.Sustain)
	require.True(t, h.Redo())
	n, _ = d.Get(0)
	assert.Equal(t, Tick(50), n.Sustain)

	c := BeginSustain(d, []Tick{100})
	c.CapAtNext = true
	c.Step(500)
	n, _ = d.Get(100)
	assert.Equal(t, Tick(20), n.Sustain)
	c.Cancel()
	n, _ = d.Get(100)
	assert.Equal(t, Tick(0), n.Sustain)

	u := BeginSustain(d, []Tick{120})
	assert.Nil(t, u.Complete())
}

func TestHistory(t *testing.T) {
	d, sel := notes(nil)
	h := NewHistory(2)
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())

	for _, tick := range []Tick{10, 20, 30} {
		require.True(t, h.Do(NewCreate(d, sel, tick, chart.NewNote(0))))
	}
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.Do(NewCreate(d, sel, 10, chart.NewNote(0))))

	require.True(t, h.Undo())
	require.True(t, h.Undo())
	assert.False(t, h.CanUndo())
	assert.Equal(t, []Tick{10}, d.Ticks())

	require.True(t, h.Redo())
	assert.Equal(t, []Tick{10, 20}, d.Ticks())
	h.Do(NewCreate(d, sel, 40, chart.NewNote(0)))
	assert.False(t, h.CanRedo())

	h.Clear()
	assert.False(t, h.CanUndo())
}

func TestSpanRestoresStretchedTempo(t *testing.T) {
	m := tempo.New(192, 120)
	defer m.Close()
	m.SetBPM(96, 240)
	m.SetBPM(192, 120)
	require.True(t, m.PinSeconds(192, 0.375))
	bpm := func(tick Tick) float64 {
		ev, _ := m.Tempo.Get(tick)
		return ev.BPM
	}

	lo, hi := m.EditSpan(96, 96)
	assert.Equal(t, Tick(0), lo)
	assert.Equal(t, Tick(192), hi)

	h := NewHistory(0)
	a := NewSpan(m.Tempo, func() (Tick, Tick) { return m.EditSpan(96, 96) }, NewDeleteRange(m.Tempo, 96, 96))
	require.True(t, h.Do(a))
	assert.InDelta(t, 160, bpm(0), 1e-9)
	assert.InDelta(t, 0.375, m.TickToSeconds(192), 1e-9)

	require.True(t, h.Undo())
	assert.Equal(t, []Tick{0, 96, 192}, m.Tempo.Ticks())
	assert.InDelta(t, 120, bpm(0), 1e-9)
	assert.InDelta(t, 240, bpm(96), 1e-9)
	assert.InDelta(t, 0.25, m.TickToSeconds(96), 1e-9)
	assert.InDelta(t, 0.375, m.TickToSeconds(192), 1e-9)

	require.True(t, h.Redo())
	assert.Equal(t, []Tick{0, 192}, m.Tempo.Ticks())
	assert.InDelta(t, 160, bpm(0), 1e-9)

	missing := NewSpan(m.Tempo, func() (Tick, Tick) { return m.EditSpan(50, 50) }, NewDeleteRange(m.Tempo, 50, 50))
	assert.False(t, h.Do(missing))
	assert.False(t, missing.Revoke())
}

func TestGroupAcrossFrets(t *testing.T) {
	l := lane.New(60)
	l.AddNote(chart.Green, 0, chart.NewNote(0))
	l.AddNote(chart.Red, 50, chart.NewNote(0))

	g := NewGroup(
		NewCreate(l.Notes[chart.Green], l.Selection(chart.Green), 0, chart.NewNote(0)),
		NewCreate(l.Notes[chart.Green], l.Selection(chart.Green), 50, chart.NewNote(0)),
	)
	require.True(t, g.Invoke())
	assert.True(t, l.IsChord(50))
	n, _ := l.Notes[chart.Red].Get(50)
	assert.Equal(t, chart.Strum, n.Flag)

	require.True(t, g.Revoke())
	assert.False(t, l.Notes[chart.Green].Contains(50))
	assert.True(t, l.Notes[chart.Green].Contains(0))
	n, _ = l.Notes[chart.Red].Get(50)
	assert.Equal(t, chart.HOPO, n.Flag)
}
