package store

import (
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/song"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expertGuitar = chart.TrackKey{Instrument: chart.Guitar, Difficulty: chart.Expert}

func open(t *testing.T) *DefaultStore {
	t.Helper()
	clock := time.Unix(1000, 0)
	s := &DefaultStore{Now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}}
	require.NoError(t, s.Init(filepath.Join(t.TempDir(), "snapshots.db")))
	t.Cleanup(s.Deinit)
	return s
}

func sample() *song.Song {
	s := song.New(192)
	s.Metadata.Name = "Sample"
	s.Track(expertGuitar).AddNote(chart.Green, 0, chart.NewNote(0))
	return s
}

func TestSaveAndLoad(t *testing.T) {
	st := open(t)
	s := sample()

	first, err := st.Save("chart", s)
	require.NoError(t, err)
	again, err := st.Save("chart", s)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	s.Track(expertGuitar).AddNote(chart.Red, 48, chart.NewNote(0))
	second, err := st.Save("chart", s)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	loaded, err := st.Load(second)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), loaded.Snapshot())

	entries, err := st.List("chart")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, first, entries[1].ID)
	assert.Equal(t, "Sample", entries[0].Name)
	assert.Equal(t, s.Hash(), entries[0].Sum)
	assert.True(t, entries[0].Saved.After(entries[1].Saved))

	latest, err := st.Latest("chart")
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)

	other, err := st.List("other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMissingSnapshots(t *testing.T) {
	st := open(t)
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Latest("chart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitFailsOnBadPath(t *testing.T) {
	st := DefaultStore{}
	assert.Error(t, st.Init(filepath.Join(t.TempDir(), "missing", "dir", "x.db")))
	st.Deinit()
}

func TestAutosaver(t *testing.T) {
	st := open(t)
	s := sample()
	a := NewAutosaver(st, "chart", func() *song.Song { return s }, 10*time.Millisecond)

	assert.False(t, a.Poll())
	a.Touch()
	a.Touch()
	a.Touch()
	require.Eventually(t, a.Poll, time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, a.Last())

	latest, err := st.Latest("chart")
	require.NoError(t, err)
	assert.Equal(t, a.Last(), latest.ID)
	assert.False(t, a.Poll())

	id, err := a.Flush()
	require.NoError(t, err)
	assert.Equal(t, latest.ID, id)
}
