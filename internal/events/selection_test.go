package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionIgnoresMissingTicks(t *testing.T) {
	d := fill(0, 100, 300)
	s := NewSelection(d)

	assert.False(t, s.Add(50))
	assert.True(t, s.Add(100))
	assert.True(t, s.Add(100))
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Remove(50))
}

func TestSelectionAddInRange(t *testing.T) {
	d := fill(0, 100, 200, 300)
	s := NewSelection(d)
	assert.Equal(t, 2, s.AddInRange(250, 100))
	assert.Equal(t, []Tick{100, 200}, s.Ticks())
}

func TestSelectionPurgedOnParentRemoval(t *testing.T) {
	d := fill(0, 100, 200, 300)
	s := NewSelection(d)
	s.AddInRange(0, 300)

	d.Remove(100)
	d.PopTicksInRange(250, 400)
	assert.Equal(t, []Tick{0, 200}, s.Ticks())

	d.Load(map[Tick]int{0: 1})
	assert.Equal(t, []Tick{0}, s.Ticks())

	s.Close()
	d.Remove(0)
	assert.Equal(t, []Tick{0}, s.Ticks())
}

func TestSelectionEachResolvesThroughParent(t *testing.T) {
	d := fill(10, 20)
	s := NewSelection(d)
	s.AddInRange(0, 100)
	d.Set(20, 99)

	var values []int
	s.Each(func(_ Tick, v int) bool {
		values = append(values, v)
		return true
	})
	assert.Equal(t, []int{10, 99}, values)
}

func TestExportNormalizedAndApplyScaled(t *testing.T) {
	d := fill(100, 150, 400)
	s := NewSelection(d)
	s.Add(150)
	s.Add(400)

	normalized := s.ExportNormalized()
	assert.Equal(t, map[Tick]int{0: 150, 250: 400}, normalized.Export())

	s.Clear()
	placed := s.ApplyScaled(normalized, 1000)
	assert.Equal(t, []Tick{1000, 1250}, placed)
	assert.Equal(t, []Tick{1000, 1250}, s.Ticks())
	v, _ := d.Get(1250)
	assert.Equal(t, 400, v)
}

func TestExportNormalizedEmpty(t *testing.T) {
	s := NewSelection(fill(1))
	assert.Equal(t, 0, s.ExportNormalized().Len())
}

func TestClipboardIsIndependent(t *testing.T) {
	d := fill(100, 130)
	c := NewClipboard[int]()
	assert.True(t, c.Empty())

	c.Set(d)
	d.Remove(100)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, Tick(30), c.Span())
	assert.Equal(t, []Tick{0, 30}, c.Data().Ticks())

	data := c.Data()
	data.Add(500, 1)
	assert.Equal(t, Tick(30), c.Span())

	c.Clear()
	assert.Equal(t, Tick(0), c.Span())
}
