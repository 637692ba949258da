package events

// Selection is a set of ticks referring into a parent collection. It never
// holds payloads of its own: every read resolves through the parent, and
// ticks the parent drops are purged when the parent reports the removal.
type Selection[T any] struct {
	parent      *EventData[T]
	ticks       *EventData[struct{}]
	unsubscribe func()
}

func NewSelection[T any](parent *EventData[T]) *Selection[T] {
	s := &Selection[T]{
		parent: parent,
		ticks:  New[struct{}](),
	}
	s.unsubscribe = parent.Subscribe(s.purge)
	return s
}

func (s *Selection[T]) purge(c Change) {
	if !c.Removed {
		return
	}
	for _, t := range s.ticks.TicksInRange(c.Start, c.End) {
		if !s.parent.Contains(t) {
			s.ticks.Remove(t)
		}
	}
}

// Close detaches the selection from its parent.
func (s *Selection[T]) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Selection[T]) Parent() *EventData[T] {
	return s.parent
}

// Add selects tick when the parent holds an entry there.
func (s *Selection[T]) Add(tick Tick) bool {
	if !s.parent.Contains(tick) {
		return false
	}
	s.ticks.Add(tick, struct{}{})
	return true
}

// AddInRange selects every parent entry in [start, end] and returns how many
// were found.
func (s *Selection[T]) AddInRange(start, end Tick) int {
	if end < start {
		start, end = end, start
	}
	found := s.parent.TicksInRange(start, end)
	for _, t := range found {
		s.ticks.Add(t, struct{}{})
	}
	return len(found)
}

func (s *Selection[T]) Remove(tick Tick) bool {
	return s.ticks.Remove(tick)
}

func (s *Selection[T]) Clear() {
	s.ticks = New[struct{}]()
}

func (s *Selection[T]) Contains(tick Tick) bool {
	return s.ticks.Contains(tick)
}

func (s *Selection[T]) Len() int {
	return s.ticks.Len()
}

func (s *Selection[T]) Empty() bool {
	return s.ticks.Len() == 0
}

func (s *Selection[T]) First() Tick {
	return s.ticks.First()
}

func (s *Selection[T]) Last() Tick {
	return s.ticks.Last()
}

func (s *Selection[T]) Ticks() []Tick {
	return s.ticks.Ticks()
}

// Each resolves every selected tick through the parent. Ticks the parent no
// longer holds are skipped.
func (s *Selection[T]) Each(fn func(Tick, T) bool) {
	s.ticks.Each(func(t Tick, _ struct{}) bool {
		v, ok := s.parent.Get(t)
		if !ok {
			return true
		}
		return fn(t, v)
	})
}

// Export copies the selected entries at their current ticks.
func (s *Selection[T]) Export() *EventData[T] {
	out := New[T]()
	s.Each(func(t Tick, v T) bool {
		out.Add(t, v)
		return true
	})
	return out
}

// ExportNormalized copies the selected entries with keys shifted so the
// smallest selected tick becomes zero.
func (s *Selection[T]) ExportNormalized() *EventData[T] {
	out := s.Export()
	if out.Len() == 0 {
		return out
	}
	return out.Shifted(-out.First())
}

// ApplyScaled writes normalized data into the parent starting at offset and
// selects what it wrote. The ticks written are returned in order.
func (s *Selection[T]) ApplyScaled(normalized *EventData[T], offset Tick) []Tick {
	placed := make([]Tick, 0, normalized.Len())
	s.parent.Batch(func() {
		normalized.Each(func(t Tick, v T) bool {
			at := s.parent.Add(t+offset, v)
			s.ticks.Add(at, struct{}{})
			placed = append(placed, at)
			return true
		})
	})
	return placed
}
